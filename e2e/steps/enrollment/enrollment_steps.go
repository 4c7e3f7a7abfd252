package enrollment

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseBody() []byte
}

// RegisterSteps registers enrollment-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &enrollmentSteps{tc: tc}

	ctx.Step(`^I enroll a new athlete$`, steps.enrollNewAthlete)
	ctx.Step(`^I enroll the same athlete again$`, steps.enrollSameAthleteAgain)
	ctx.Step(`^I check enrollment for identification "([^"]*)"$`, steps.checkEnrollmentFor)

	ctx.Step(`^the enrolled athlete carries an external reference$`, steps.athleteCarriesExternalReference)
	ctx.Step(`^the enrollment is enabled$`, steps.enrollmentIsEnabled)
	ctx.Step(`^the enrollment pre-check reports enrolled$`, steps.preCheckReportsEnrolled)
	ctx.Step(`^the same athlete record is reused$`, steps.sameAthleteRecordReused)
}

type enrollmentSteps struct {
	tc TestContext
	// State for tracking across steps
	identification string
	firstAthleteID string
}

func (s *enrollmentSteps) enrollNewAthlete(ctx context.Context) error {
	s.identification = randomIdentification()
	s.firstAthleteID = ""
	if err := s.enroll(); err != nil {
		return err
	}
	// Unauthenticated scenarios get an error envelope with no athlete.
	if id, err := s.tc.GetResponseField("atleta.id"); err == nil {
		s.firstAthleteID = fmt.Sprintf("%v", id)
	}
	return nil
}

func (s *enrollmentSteps) enrollSameAthleteAgain(ctx context.Context) error {
	if s.identification == "" {
		return fmt.Errorf("no athlete enrolled yet in this scenario")
	}
	return s.enroll()
}

func (s *enrollmentSteps) enroll() error {
	body := map[string]interface{}{
		"persona": map[string]interface{}{
			"identification": s.identification,
			"nombre":         "Valeria",
			"apellido":       "Mendoza",
			"email":          fmt.Sprintf("valeria.%s@club.ec", s.identification),
		},
		"atleta": map[string]interface{}{
			"nombre":   "Valeria",
			"apellido": "Mendoza",
			"cedula":   s.identification,
			"edad":     14,
		},
		"inscripcion": map[string]interface{}{
			"tipo_inscripcion": "ORDINARIA",
		},
	}
	return s.tc.POST("/enrollments", body)
}

func (s *enrollmentSteps) checkEnrollmentFor(ctx context.Context, identification string) error {
	return s.tc.GET("/enrollments/check/"+identification, nil)
}

func (s *enrollmentSteps) athleteCarriesExternalReference(ctx context.Context) error {
	ref, err := s.tc.GetResponseField("atleta.persona_external")
	if err != nil {
		return err
	}
	if str, _ := ref.(string); str == "" {
		return fmt.Errorf("athlete has no external reference: %s", s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *enrollmentSteps) enrollmentIsEnabled(ctx context.Context) error {
	enabled, err := s.tc.GetResponseField("inscripcion.habilitada")
	if err != nil {
		return err
	}
	if enabled != true {
		return fmt.Errorf("enrollment is not enabled: %s", s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *enrollmentSteps) preCheckReportsEnrolled(ctx context.Context) error {
	if err := s.tc.GET("/enrollments/check/"+s.identification, nil); err != nil {
		return err
	}
	exists, err := s.tc.GetResponseField("exists")
	if err != nil {
		return err
	}
	if exists != true {
		return fmt.Errorf("pre-check reports %v for %s", exists, s.identification)
	}
	return nil
}

func (s *enrollmentSteps) sameAthleteRecordReused(ctx context.Context) error {
	id, err := s.tc.GetResponseField("atleta.id")
	if err != nil {
		return err
	}
	if got := fmt.Sprintf("%v", id); got != s.firstAthleteID {
		return fmt.Errorf("expected athlete %s to be reused, got %s", s.firstAthleteID, got)
	}
	return nil
}

// randomIdentification builds a well-formed ten digit identification so
// repeated runs against a persistent database never collide.
func randomIdentification() string {
	buf := make([]byte, 8)
	for i := range buf {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		buf[i] = byte('0' + n.Int64())
	}
	return "09" + string(buf)
}
