package routes

import (
	"github.com/Dosada05/prediction-league/handlers"
	"github.com/Dosada05/prediction-league/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	authHandler *handlers.AuthHandler,
	driverHandler *handlers.DriverHandler,
	constructorHandler *handlers.ConstructorHandler,
	raceHandler *handlers.RaceHandler,
	predictionHandler *handlers.PredictionHandler,
	resultHandler *handlers.ResultHandler,
	scoringHandler *handlers.ScoringHandler,
	webSocketHandler *handlers.WebSocketHandler,
	authenticator *middleware.Authenticator,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		// Аутентификация
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Публичное чтение
		r.Get("/races", raceHandler.List)
		r.Get("/races/predictions", predictionHandler.RacePredictions)
		r.Get("/races/results", resultHandler.ListByRace)
		r.Get("/drivers", driverHandler.List)
		r.Get("/constructors", constructorHandler.List)

		// Счёт и таблица лидеров
		r.Post("/scores", scoringHandler.ScoreForRace)
		r.Get("/scores/total/{username}", scoringHandler.TotalScore)
		r.Get("/standings", scoringHandler.Standings)

		// Live-лента таблицы лидеров
		r.Get("/ws/standings", webSocketHandler.ServeStandings)

		// Маршруты, требующие токена
		r.Group(func(r chi.Router) {
			r.Use(authenticator.Authenticate)

			r.Post("/predictions", predictionHandler.Submit)
			r.Delete("/predictions", predictionHandler.Delete)

			r.Post("/drivers", driverHandler.Create)
			r.Post("/drivers/{driverID}/photo", driverHandler.UploadPhoto)
			r.Post("/constructors", constructorHandler.Create)
			r.Post("/races", raceHandler.Create)
			r.Post("/races/{raceID}/poster", raceHandler.UploadPoster)
			r.Post("/results", resultHandler.Record)
		})
	})
}
