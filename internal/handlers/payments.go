package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/bookscope/bookscope/internal/middleware"
	"github.com/bookscope/bookscope/internal/models"
	"github.com/bookscope/bookscope/internal/repository"
	"github.com/bookscope/bookscope/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// Plan pricing in cents.
var planPrices = map[models.PlanType]int64{
	models.PlanBasic:    499,
	models.PlanDetailed: 1499,
	models.PlanPremium:  2999,
}

type PaymentsHandler struct {
	payments *repository.PaymentRepository
	users    *repository.UserRepository
	reports  *services.ReportGenerator
	email    *services.EmailService
}

func NewPaymentsHandler(
	payments *repository.PaymentRepository,
	users *repository.UserRepository,
	reports *services.ReportGenerator,
	email *services.EmailService,
) *PaymentsHandler {
	return &PaymentsHandler{
		payments: payments,
		users:    users,
		reports:  reports,
		email:    email,
	}
}

// CreatePaymentIntent opens a Stripe payment intent for the selected
// plan and records the pending payment.
func (h *PaymentsHandler) CreatePaymentIntent(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"message": "Not authenticated",
		})
	}

	var req struct {
		PlanType   models.PlanType `json:"plan_type"`
		BookTitle  string          `json:"book_title"`
		BookAuthor string          `json:"book_author"`
	}
	if err := c.BodyParser(&req); err != nil || req.BookTitle == "" || req.BookAuthor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "plan_type, book_title and book_author are required",
		})
	}

	amount, ok := planPrices[req.PlanType]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid plan type",
		})
	}

	user, err := h.users.FindActiveByID(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"message": "User not found",
		})
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.AddMetadata("user_id", strconv.FormatUint(uint64(user.ID), 10))
	params.AddMetadata("user_email", user.Email)
	params.AddMetadata("plan_type", string(req.PlanType))
	params.AddMetadata("book_title", req.BookTitle)
	params.AddMetadata("book_author", req.BookAuthor)

	intent, err := paymentintent.New(params)
	if err != nil {
		slog.Error("Stripe payment intent creation failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   true,
			"message": "Payment provider error",
		})
	}

	payment := models.Payment{
		UserID:          user.ID,
		StripePaymentID: intent.ID,
		Amount:          amount,
		Currency:        "usd",
		Status:          models.PaymentPending,
		PlanType:        req.PlanType,
		BookTitle:       req.BookTitle,
		BookAuthor:      req.BookAuthor,
		Audited:         models.Audited{CreatedBy: &user.ID},
	}
	if err := h.payments.Create(c.UserContext(), &payment); err != nil {
		slog.Error("Failed to persist payment", "error", err, "stripe_payment_id", intent.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to record payment",
		})
	}

	return c.JSON(fiber.Map{
		"clientSecret": intent.ClientSecret,
		"paymentId":    payment.ID,
	})
}

// ConfirmPayment verifies the intent with Stripe, marks the payment
// completed and dispatches report generation in the background.
func (h *PaymentsHandler) ConfirmPayment(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"message": "Not authenticated",
		})
	}
	paymentID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid payment id",
		})
	}

	payment, err := h.payments.FindForUser(c.UserContext(), uint(paymentID), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Payment not found",
		})
	}

	intent, err := paymentintent.Get(payment.StripePaymentID, nil)
	if err != nil {
		slog.Error("Stripe payment intent lookup failed", "error", err, "stripe_payment_id", payment.StripePaymentID)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   true,
			"message": "Payment provider error",
		})
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": fmt.Sprintf("Payment not completed. Status: %s", intent.Status),
		})
	}

	user, err := h.users.FindActiveByID(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"message": "User not found",
		})
	}

	payment.Status = models.PaymentCompleted
	payment.UpdatedBy = &userID
	if err := h.payments.Save(c.UserContext(), payment); err != nil {
		slog.Error("Failed to mark payment completed", "error", err, "payment_id", payment.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to update payment",
		})
	}

	// Fire-and-forget; failures are logged, never surfaced to the buyer.
	go h.deliverReport(payment.ID, user.Email, payment.BookTitle, payment.BookAuthor, payment.PlanType)

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Payment confirmed. Your report will be sent to your email shortly.",
	})
}

// deliverReport generates the PDF, emails it and flags the payment.
func (h *PaymentsHandler) deliverReport(paymentID uint, userEmail, bookTitle, bookAuthor string, plan models.PlanType) {
	ctx := context.Background()

	pdfPath, err := h.reports.Generate(ctx, bookTitle, bookAuthor, plan)
	if err != nil {
		slog.Error("Report generation failed", "payment_id", paymentID, "error", err)
		return
	}
	defer os.Remove(pdfPath)

	if err := h.email.SendReport(userEmail, bookTitle, bookAuthor, pdfPath, plan); err != nil {
		slog.Error("Report email failed", "payment_id", paymentID, "error", err)
		return
	}

	payment, err := h.payments.FindActiveByID(ctx, paymentID)
	if err != nil {
		slog.Error("Payment reload failed after report dispatch", "payment_id", paymentID, "error", err)
		return
	}
	payment.PDFSent = true
	if err := h.payments.Save(ctx, payment); err != nil {
		slog.Error("Failed to flag report as sent", "payment_id", paymentID, "error", err)
	}
}

// History returns the caller's payments, newest first.
func (h *PaymentsHandler) History(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"message": "Not authenticated",
		})
	}
	skip, limit := pagination(c)

	payments, err := h.payments.ListForUser(c.UserContext(), userID, skip, limit)
	if err != nil {
		slog.Error("Payment history query failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load payment history",
		})
	}
	return c.JSON(payments)
}

// Plans returns the plan catalog.
func (h *PaymentsHandler) Plans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"plans": []fiber.Map{
			{
				"type":  models.PlanBasic,
				"name":  "Basic Literary Analysis",
				"price": float64(planPrices[models.PlanBasic]) / 100,
				"pages": "5-7 pages",
				"features": []string{
					"Book Statistics",
					"Synopsis",
					"Author Presentation",
					"Copyright Details",
					"Past Adaptations",
				},
			},
			{
				"type":  models.PlanDetailed,
				"name":  "Detailed Literary Analysis",
				"price": float64(planPrices[models.PlanDetailed]) / 100,
				"pages": "12-15 pages",
				"features": []string{
					"Everything in Basic",
					"Thematic Analysis",
					"Character Study",
					"Writing Style Analysis",
					"Impact and Legacy",
					"Historical Context",
				},
			},
			{
				"type":  models.PlanPremium,
				"name":  "Premium Literary Analysis",
				"price": float64(planPrices[models.PlanPremium]) / 100,
				"pages": "25-30 pages",
				"features": []string{
					"Everything in Detailed",
					"Critical Reception",
					"Comparative Literature",
					"Psychological Interpretations",
					"Symbolism Study",
					"Audience Analysis",
					"Marketing Strategy",
					"Scholarly Analysis",
					"Future Prospects",
				},
			},
		},
	})
}
