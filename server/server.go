package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/eiiot/amtraker-v3/amtraker"
	"github.com/eiiot/amtraker-v3/store"
)

const docsURL = "https://amtrak.piemadd.com"

// Setup builds the API app over the store's read interface. Handlers never
// block on a refresh: they serve whichever snapshot is current.
func Setup(st *store.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(NewLogger())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Welcome to the Amtraker API! Docs are available at /docs.")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Redirect(docsURL, fiber.StatusFound)
	})
	app.Get("/v2", func(c *fiber.Ctx) error {
		return c.Redirect("/v2/trains", fiber.StatusMovedPermanently)
	})

	app.Get("/v2/trains", func(c *fiber.Ctx) error {
		return c.JSON(st.Trains())
	})
	app.Get("/v2/trains/:number", func(c *fiber.Ctx) error {
		num, err := strconv.Atoi(c.Params("number"))
		if err != nil {
			return c.JSON([]amtraker.Train{})
		}
		runs, ok := st.TrainsByNumber(num)
		if !ok {
			return c.JSON([]amtraker.Train{})
		}
		return c.JSON(map[string][]amtraker.Train{c.Params("number"): runs})
	})

	app.Get("/v2/stations", func(c *fiber.Ctx) error {
		return c.JSON(st.Stations())
	})
	app.Get("/v2/stations/:code", func(c *fiber.Ctx) error {
		code := c.Params("code")
		meta, ok := st.Station(code)
		if !ok {
			return c.JSON([]amtraker.StationMeta{})
		}
		return c.JSON(map[string]amtraker.StationMeta{code: meta})
	})

	app.Get("/api/health", handleHealth(st))

	return app
}

type healthResponse struct {
	Status           string `json:"status"`
	LastRefreshEpoch int64  `json:"last_refresh_epoch"`
}

func handleHealth(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := healthResponse{Status: "ok"}
		if t := st.LastRefresh(); !t.IsZero() {
			resp.LastRefreshEpoch = t.Unix()
		}
		return c.JSON(resp)
	}
}
