package registration

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
	GetResponseField(field string) (interface{}, error)
	GetLastResponseBody() []byte
}

// RegisterSteps registers administrator registration step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrationSteps{tc: tc}

	ctx.Step(`^I register a new administrator with position "([^"]*)"$`, steps.registerAdministrator)
	ctx.Step(`^the registered administrator carries an external reference$`, steps.administratorCarriesExternalReference)
}

type registrationSteps struct {
	tc TestContext
	// State for tracking across steps
	identification string
}

func (s *registrationSteps) registerAdministrator(ctx context.Context, position string) error {
	s.identification = randomIdentification()
	body := map[string]interface{}{
		"persona": map[string]interface{}{
			"identification": s.identification,
			"nombre":         "Carla",
			"apellido":       "Reyes",
			"email":          fmt.Sprintf("carla.%s@club.ec", s.identification),
			"password":       "Sup3r-Secreta!",
		},
		"cargo": position,
	}
	return s.tc.POST("/administrators", body)
}

func (s *registrationSteps) administratorCarriesExternalReference(ctx context.Context) error {
	ref, err := s.tc.GetResponseField("administrador.persona_external")
	if err != nil {
		return err
	}
	if str, _ := ref.(string); str == "" {
		return fmt.Errorf("administrator has no external reference: %s", s.tc.GetLastResponseBody())
	}
	return nil
}

// randomIdentification builds a fresh ten digit identification so repeated
// runs never trip the duplicate account rejection upstream.
func randomIdentification() string {
	buf := make([]byte, 8)
	for i := range buf {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		buf[i] = byte('0' + n.Int64())
	}
	return "17" + string(buf)
}
