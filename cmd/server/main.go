// Command server runs the review workflow backend: HTTP health endpoints,
// the PostgreSQL-backed claim queue, and optional NATS notifications.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"log"

	"github.com/medwave/review-backend/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("application failed: %v", err)
	}
}
