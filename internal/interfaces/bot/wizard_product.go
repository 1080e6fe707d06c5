package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/conversation"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

// startAddProduct opens the add-product dialog on the category step.
// Products can only live on leaf categories, so only those are offered.
func (r *Router) startAddProduct(ctx context.Context, cb *telegram.CallbackQuery) error {
	leaves, err := r.catalog.ListLeafCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list leaf categories: %w", err)
	}
	if len(leaves) == 0 {
		return r.answer(ctx, cb, "Create a category first")
	}

	r.clearSession(ctx, cb.From.ID)
	state := &conversation.AddProductSession{Step: conversation.StepSelectingCategory}
	if err := r.sessions.Put(ctx, cb.From.ID, state); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if err := r.editOrSend(ctx, cb, r.render.ProductCategoryPrompt(), categoryPickKeyboard(leaves, cbPrefixProductCategory)); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

func (r *Router) pickProductCategory(ctx context.Context, cb *telegram.CallbackQuery, id uuid.UUID) error {
	session, err := r.sessions.Get(ctx, cb.From.ID)
	if err != nil {
		return r.expireSession(ctx, cb)
	}
	state, ok := session.(*conversation.AddProductSession)
	if !ok || state.Step != conversation.StepSelectingCategory {
		return r.expireSession(ctx, cb)
	}

	state.CategoryID = id
	state.Step = conversation.StepAwaitingProductName
	if err := r.sessions.Put(ctx, cb.From.ID, state); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if err := r.editOrSend(ctx, cb, r.render.ProductNamePrompt(), cancelKeyboard()); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// advanceAddProduct feeds one admin message into the add-product dialog.
// Invalid input re-prompts the current step; fields gathered so far are
// kept untouched.
func (r *Router) advanceAddProduct(ctx context.Context, msg *telegram.Message, state *conversation.AddProductSession) error {
	switch state.Step {
	case conversation.StepSelectingCategory:
		return r.reply(ctx, msg.Chat.ID, r.render.PickFromListPrompt(), nil)

	case conversation.StepAwaitingProductName:
		name := strings.TrimSpace(msg.Text)
		if len([]rune(name)) < catalog.MinProductNameLen {
			reason := fmt.Sprintf("Product name must be at least %d characters", catalog.MinProductNameLen)
			return r.reply(ctx, msg.Chat.ID, r.render.TryAgain(reason), cancelKeyboard())
		}
		state.Name = name
		state.Step = conversation.StepAwaitingDescription
		if err := r.sessions.Put(ctx, msg.From.ID, state); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		return r.reply(ctx, msg.Chat.ID, r.render.ProductDescriptionPrompt(name), cancelKeyboard())

	case conversation.StepAwaitingDescription:
		description := strings.TrimSpace(msg.Text)
		if len([]rune(description)) < catalog.MinDescriptionLen {
			reason := fmt.Sprintf("Product description must be at least %d characters", catalog.MinDescriptionLen)
			return r.reply(ctx, msg.Chat.ID, r.render.TryAgain(reason), cancelKeyboard())
		}
		state.Description = description
		state.Step = conversation.StepAwaitingPrice
		if err := r.sessions.Put(ctx, msg.From.ID, state); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		return r.reply(ctx, msg.Chat.ID, r.render.ProductPricePrompt(), cancelKeyboard())

	case conversation.StepAwaitingPrice:
		price, err := catalog.ParsePrice(msg.Text)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				return r.reply(ctx, msg.Chat.ID, r.render.TryAgain(domainErr.Message), cancelKeyboard())
			}
			return fmt.Errorf("failed to parse price: %w", err)
		}
		state.Price = price
		state.Step = conversation.StepAwaitingPhoto
		if err := r.sessions.Put(ctx, msg.From.ID, state); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		return r.reply(ctx, msg.Chat.ID, r.render.ProductPhotoPrompt(), skipPhotoKeyboard())

	case conversation.StepAwaitingPhoto:
		if len(msg.Photo) > 0 {
			// variants are listed smallest first; take the largest
			fileID := msg.Photo[len(msg.Photo)-1].FileID
			photoKey, err := r.photos.Ingest(ctx, fileID)
			if err != nil {
				logger.L(ctx).Error("failed to ingest product photo", zap.Error(err))
				return r.reply(ctx, msg.Chat.ID, r.render.PhotoSaveFailed(), skipPhotoKeyboard())
			}
			return r.deliverProductCommit(ctx, msg, state, photoKey)
		}
		if strings.EqualFold(strings.TrimSpace(msg.Text), "skip") {
			return r.deliverProductCommit(ctx, msg, state, "")
		}
		return r.reply(ctx, msg.Chat.ID, r.render.ProductPhotoPrompt(), skipPhotoKeyboard())
	}
	return nil
}

// skipProductPhoto commits the product without a photo from the skip
// button on the photo step
func (r *Router) skipProductPhoto(ctx context.Context, cb *telegram.CallbackQuery) error {
	session, err := r.sessions.Get(ctx, cb.From.ID)
	if err != nil {
		return r.expireSession(ctx, cb)
	}
	state, ok := session.(*conversation.AddProductSession)
	if !ok || state.Step != conversation.StepAwaitingPhoto {
		return r.expireSession(ctx, cb)
	}

	text, markup, err := r.commitProduct(ctx, cb.From.ID, state, "")
	if err != nil {
		if answerErr := r.answer(ctx, cb, r.render.SomethingWentWrong()); answerErr != nil {
			return answerErr
		}
		return err
	}
	if err := r.editOrSend(ctx, cb, text, markup); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// deliverProductCommit is the message-path wrapper around commitProduct
func (r *Router) deliverProductCommit(ctx context.Context, msg *telegram.Message, state *conversation.AddProductSession, photoKey string) error {
	text, markup, err := r.commitProduct(ctx, msg.From.ID, state, photoKey)
	if err != nil {
		if replyErr := r.reply(ctx, msg.Chat.ID, r.render.SomethingWentWrong(), nil); replyErr != nil {
			return replyErr
		}
		return err
	}
	return r.reply(ctx, msg.Chat.ID, text, markup)
}

// commitProduct performs the terminal store mutation and clears the
// dialog. It returns the confirmation text for the caller to deliver on
// whichever path the input arrived.
func (r *Router) commitProduct(ctx context.Context, userID int64, state *conversation.AddProductSession, photoKey string) (string, *telegram.InlineKeyboardMarkup, error) {
	product, warn, err := r.catalog.AddProduct(ctx, catalogapp.AddProductInput{
		CategoryID:  state.CategoryID,
		Name:        state.Name,
		Description: state.Description,
		Price:       state.Price,
		PhotoKey:    photoKey,
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			// the chosen category vanished or gained children mid-dialog
			r.clearSession(ctx, userID)
			return r.render.StartOver(domainErr.Message), backToPanelKeyboard(), nil
		}
		return "", nil, fmt.Errorf("failed to create product: %w", err)
	}

	r.clearSession(ctx, userID)
	return r.render.ProductCreated(product, warn), backToPanelKeyboard(), nil
}
