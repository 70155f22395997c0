package handlers

import (
	"log/slog"

	"github.com/bookscope/bookscope/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BooksHandler struct {
	search *services.BookSearchService
}

func NewBooksHandler(search *services.BookSearchService) *BooksHandler {
	return &BooksHandler{search: search}
}

// Search finds books matching a free-text description.
func (h *BooksHandler) Search(c *fiber.Ctx) error {
	var req struct {
		Description       string   `json:"description"`
		AdditionalDetails string   `json:"additional_details"`
		ExcludeTitles     []string `json:"exclude_titles"`
	}
	if err := c.BodyParser(&req); err != nil || req.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Description is required",
		})
	}

	books, err := h.search.Search(c.UserContext(), req.Description, req.AdditionalDetails, req.ExcludeTitles)
	if err != nil {
		slog.Error("Book search failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   true,
			"message": "Error searching for books",
		})
	}
	return c.JSON(books)
}
