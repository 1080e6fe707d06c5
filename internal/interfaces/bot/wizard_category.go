package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shopbot/backend/internal/domain/conversation"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
)

// startAddCategory opens the add-category dialog with the root-or-sub
// choice. Any dialog already in progress is discarded.
func (r *Router) startAddCategory(ctx context.Context, cb *telegram.CallbackQuery) error {
	r.clearSession(ctx, cb.From.ID)
	if err := r.editOrSend(ctx, cb, r.render.CategoryTypePrompt(), categoryTypeKeyboard()); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

func (r *Router) chooseRootCategory(ctx context.Context, cb *telegram.CallbackQuery) error {
	state := &conversation.AddCategorySession{Step: conversation.StepAwaitingCategoryName}
	if err := r.sessions.Put(ctx, cb.From.ID, state); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if err := r.editOrSend(ctx, cb, r.render.CategoryNamePrompt(), cancelKeyboard()); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

func (r *Router) chooseSubcategory(ctx context.Context, cb *telegram.CallbackQuery) error {
	roots, err := r.catalog.ListRootCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list root categories: %w", err)
	}
	if len(roots) == 0 {
		return r.answer(ctx, cb, "Create a root category first")
	}

	state := &conversation.AddCategorySession{Step: conversation.StepSelectingParent}
	if err := r.sessions.Put(ctx, cb.From.ID, state); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if err := r.editOrSend(ctx, cb, r.render.CategoryParentPrompt(), categoryPickKeyboard(roots, cbPrefixParentCategory)); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// pickCategoryParent records the chosen parent and moves the dialog on
// to the name step
func (r *Router) pickCategoryParent(ctx context.Context, cb *telegram.CallbackQuery, id uuid.UUID) error {
	session, err := r.sessions.Get(ctx, cb.From.ID)
	if err != nil {
		return r.expireSession(ctx, cb)
	}
	state, ok := session.(*conversation.AddCategorySession)
	if !ok || state.Step != conversation.StepSelectingParent {
		return r.expireSession(ctx, cb)
	}

	state.ParentID = &id
	state.Step = conversation.StepAwaitingCategoryName
	if err := r.sessions.Put(ctx, cb.From.ID, state); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if err := r.editOrSend(ctx, cb, r.render.CategoryNamePrompt(), cancelKeyboard()); err != nil {
		return err
	}
	return r.answer(ctx, cb, "")
}

// advanceAddCategory feeds one admin message into the add-category
// dialog. A rejected name re-prompts without touching the session.
func (r *Router) advanceAddCategory(ctx context.Context, msg *telegram.Message, state *conversation.AddCategorySession) error {
	switch state.Step {
	case conversation.StepSelectingParent:
		return r.reply(ctx, msg.Chat.ID, r.render.PickFromListPrompt(), nil)

	case conversation.StepAwaitingCategoryName:
		category, warn, err := r.catalog.AddCategory(ctx, msg.Text, state.ParentID)
		if err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				if domainErr.Code == "INVALID_NAME" {
					return r.reply(ctx, msg.Chat.ID, r.render.TryAgain(domainErr.Message), cancelKeyboard())
				}
				// the chosen parent vanished mid-dialog
				r.clearSession(ctx, msg.From.ID)
				return r.reply(ctx, msg.Chat.ID, r.render.StartOver(domainErr.Message), backToPanelKeyboard())
			}
			if replyErr := r.reply(ctx, msg.Chat.ID, r.render.SomethingWentWrong(), nil); replyErr != nil {
				return replyErr
			}
			return fmt.Errorf("failed to create category: %w", err)
		}

		r.clearSession(ctx, msg.From.ID)
		return r.reply(ctx, msg.Chat.ID, r.render.CategoryCreated(category, warn), backToPanelKeyboard())
	}
	return nil
}
