package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/dancehub/event-registration/cmd/app"
)

// @title        Event registration API
// @version      1.0
// @description  Registration, product inventory and Stripe payment reconciliation for dance events.
// @description  Amounts are integers in minor currency units.
//
// @contact.name  DanceHub platform team
//
// @BasePath  /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by the identity provider
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
