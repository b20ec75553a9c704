package order

import (
	"pedidos-backend/internal/auth"
	"pedidos-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

func callerFrom(c *fiber.Ctx) Caller {
	caller := Caller{Actor: auth.ActorFrom(c)}
	if claims := auth.ClaimsFrom(c); claims != nil {
		caller.EmployeeID = claims.EmployeeID
		caller.IsAdmin = claims.IsAdmin()
	}
	return caller
}

// GET /api/orders
func ListHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/orders/cycle/:id
func ListByCycleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		list, err := svc.ListByCycle(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/orders/employee/:id?history=1
func ListByEmployeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		history := c.QueryBool("history", false)
		list, err := svc.ListByEmployee(c.UserContext(), callerFrom(c), id, history)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/orders/:id
func GetHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		o, err := svc.Get(c.UserContext(), callerFrom(c), id)
		if err != nil {
			return err
		}
		return c.JSON(o)
	}
}

// POST /api/orders
func SubmitHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SubmitRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		o, err := svc.Submit(c.UserContext(), callerFrom(c), body)
		if err != nil {
			return err
		}
		return c.JSON(o)
	}
}

// PATCH /api/orders/:id
func UpdateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		o, err := svc.Update(c.UserContext(), callerFrom(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(o)
	}
}

// DELETE /api/orders/:id
func ClearHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		o, err := svc.Clear(c.UserContext(), callerFrom(c), id)
		if err != nil {
			return err
		}
		return c.JSON(o)
	}
}
