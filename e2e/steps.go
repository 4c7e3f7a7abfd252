package e2e

import (
	"github.com/cucumber/godog"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/e2e/steps/common"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/e2e/steps/enrollment"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/e2e/steps/registration"
)

// TestContext is the shared scenario state handed to every steps package.
type TestContext = common.TestContext

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, authentication, assertions)
	common.RegisterSteps(ctx, tc)

	// Register enrollment-specific steps
	enrollment.RegisterSteps(ctx, tc)

	// Register administrator registration steps
	registration.RegisterSteps(ctx, tc)
}
