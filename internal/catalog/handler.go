package catalog

import (
	"context"

	"pedidos-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/groups
func ListGroupsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups, err := svc.ListGroups(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(groups)
	}
}

// POST /api/groups
func CreateGroupHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body GroupRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		g, err := svc.CreateGroup(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	}
}

// PATCH /api/groups/:id
func UpdateGroupHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body GroupPatch
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		g, err := svc.UpdateGroup(c.UserContext(), id, body)
		if err != nil {
			return err
		}
		return c.JSON(g)
	}
}

// DELETE /api/groups/:id
func DeleteGroupHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeleteGroup(c.UserContext(), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// PATCH /api/groups/reorder
func ReorderGroupsHandler(svc *Service) fiber.Handler {
	return reorderHandler(svc.ReorderGroups)
}

// POST /api/subgroups
func CreateSubgroupHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SubgroupRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		sub, err := svc.CreateSubgroup(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(sub)
	}
}

// PATCH /api/subgroups/:id
func UpdateSubgroupHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body SubgroupPatch
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		sub, err := svc.UpdateSubgroup(c.UserContext(), id, body)
		if err != nil {
			return err
		}
		return c.JSON(sub)
	}
}

// DELETE /api/subgroups/:id
func DeleteSubgroupHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeleteSubgroup(c.UserContext(), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// PATCH /api/subgroups/reorder
func ReorderSubgroupsHandler(svc *Service) fiber.Handler {
	return reorderHandler(svc.ReorderSubgroups)
}

// GET /api/products?available=true
func ListProductsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.ListProducts(c.UserContext(), c.Query("available") == "true")
		if err != nil {
			return err
		}
		return c.JSON(products)
	}
}

// POST /api/products
func CreateProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		p, err := svc.CreateProduct(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// PATCH /api/products/:id
func UpdateProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ProductPatch
		if err := httpx.BindAndValidate(c, &body); err != nil {
			return err
		}
		p, err := svc.UpdateProduct(c.UserContext(), id, body)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// DELETE /api/products/:id
func DeleteProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeleteProduct(c.UserContext(), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// PATCH /api/products/reorder
func ReorderProductsHandler(svc *Service) fiber.Handler {
	return reorderHandler(svc.ReorderProducts)
}

func reorderHandler(fn func(ctx context.Context, items []SortItem) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []SortItem
		if err := c.BodyParser(&items); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		for i := range items {
			if err := httpx.Validate(&items[i]); err != nil {
				return err
			}
		}
		if err := fn(c.UserContext(), items); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
