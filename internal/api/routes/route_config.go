package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/receiptwise/backend/internal/api/handlers"
	"github.com/receiptwise/backend/internal/middleware"
	"github.com/receiptwise/backend/pkg/jwt"
)

type Config struct {
	App            *fiber.App
	UserHandler    handlers.UserHandler
	ReceiptHandler handlers.ReceiptHandler
	ExpenseHandler handlers.ExpenseHandler
	WebhookHandler handlers.WebhookHandler
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Receipts()
	c.Expenses()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Me)
	}
}

func (c *Config) Receipts() {
	receipts := c.App.Group("/api/v1/receipts", c.Middleware.AuthMiddleware(c.JWTService))
	{
		receipts.Post("", c.ReceiptHandler.UploadReceipt)
		receipts.Get("", c.ReceiptHandler.GetReceipts)
		receipts.Post("/presign", c.ReceiptHandler.PresignUpload)
		receipts.Post("/confirm", c.ReceiptHandler.ConfirmUpload)
		receipts.Get("/:id", c.ReceiptHandler.GetReceiptByID)
		receipts.Delete("/:id", c.ReceiptHandler.DeleteReceipt)
		receipts.Patch("/items/:itemId", c.ReceiptHandler.UpdateItem)
	}
}

func (c *Config) Expenses() {
	expenses := c.App.Group("/api/v1/expenses", c.Middleware.AuthMiddleware(c.JWTService))
	{
		expenses.Get("/weekly", c.ExpenseHandler.GetWeeklyExpenses)
		expenses.Get("/summary", c.ExpenseHandler.GetSummary)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})

	c.App.Get("/api/v1/categories", c.ReceiptHandler.GetCategories)

	// Anonymous trial uploads share the presign pipeline without auth. The
	// service enforces the per-session cap.
	anonymous := c.App.Group("/api/v1/anonymous/receipts")
	{
		anonymous.Post("/presign", c.ReceiptHandler.PresignUpload)
		anonymous.Post("/confirm", c.ReceiptHandler.ConfirmUpload)
	}

	c.App.Post("/webhook/email-receipts", c.WebhookHandler.HandleEmailReceipt)
}
