// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"rps_backend/internal/app"
	"rps_backend/internal/auth"
	"rps_backend/internal/config"
	"rps_backend/internal/gql"
	"rps_backend/internal/user"

	"github.com/google/wire"
)

// initializeApplication is the main Wire injector.
func initializeApplication(cfg *config.Config) (*application, func(), error) {
	wire.Build(
		// Platform Layer
		provideLogger,
		provideDatabase,

		// Users
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),

		// Sign-in and sessions
		auth.NewSessionManager,
		auth.NewGoogleVerifier,
		wire.Bind(new(auth.IdentityVerifier), new(*auth.GoogleVerifier)),
		auth.NewHandler,

		// GraphQL
		gql.NewHandler,

		// Application Layer
		app.NewRouter,
		app.NewServer,
		newApplication,
	)
	return nil, nil, nil
}
