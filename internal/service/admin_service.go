package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/game-rental-service/internal/blob"
	"github.com/spec-kit/game-rental-service/internal/config"
	"github.com/spec-kit/game-rental-service/internal/domain"
	"github.com/spec-kit/game-rental-service/internal/events"
	"github.com/spec-kit/game-rental-service/internal/repository"
	"github.com/spec-kit/game-rental-service/internal/verification"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

// changeRequestListLimit bounds the moderation review queue.
const changeRequestListLimit = 50

// AdminService covers the privileged surface: role assignment, catalog
// change-request moderation and the guard-code operator queue.
type AdminService struct {
	users          repository.UserRepository
	games          repository.GameRepository
	changeRequests repository.ChangeRequestRepository
	codes          *verification.Store
	blobs          blob.Remover
	dispatcher     events.Dispatcher
	guardTTL       time.Duration
}

// AdminDependencies encapsulates collaborator requirements.
type AdminDependencies struct {
	UserRepo          repository.UserRepository
	GameRepo          repository.GameRepository
	ChangeRequestRepo repository.ChangeRequestRepository
	CodeStore         *verification.Store
	BlobRemover       blob.Remover
	Dispatcher        events.Dispatcher
}

// NewAdminService builds the service.
func NewAdminService(cfg config.Config, deps AdminDependencies) *AdminService {
	return &AdminService{
		users:          deps.UserRepo,
		games:          deps.GameRepo,
		changeRequests: deps.ChangeRequestRepo,
		codes:          deps.CodeStore,
		blobs:          deps.BlobRemover,
		dispatcher:     deps.Dispatcher,
		guardTTL:       cfg.Auth.GuardCodeTTL(),
	}
}

// PatchRole moves the account behind email to newRole. The actor must
// outrank-or-equal both the target's current role and the new one; in
// particular an ADMIN can never touch or mint a ROOT_ADMIN.
func (s *AdminService) PatchRole(ctx context.Context, actorRole domain.Role, email string, newRole domain.Role) (*domain.User, error) {
	if !newRole.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(newRole)})
	}

	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, err
	}

	if !actorRole.CanAssign(target.Role, newRole) {
		return nil, apperrors.NewForbidden("insufficient role to perform this assignment")
	}

	return s.users.UpdateRoleByEmail(ctx, email, newRole)
}

// ListChangeRequests returns the most recent catalog edits for review.
func (s *AdminService) ListChangeRequests(ctx context.Context) ([]*domain.GameChangeRequest, error) {
	return s.changeRequests.ListRecent(ctx, changeRequestListLimit)
}

// ApproveChangeRequest applies the proposed field values to the game and
// marks the request approved. When the image is replaced, the superseded
// blob is removed; blob cleanup failure does not fail the decision.
func (s *AdminService) ApproveChangeRequest(ctx context.Context, requestID int64) (*domain.Game, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	game, err := s.games.GetByID(ctx, req.GameID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("game", map[string]any{"id": req.GameID})
		}
		return nil, err
	}

	oldImage := game.ImageURL
	if err := applyGameChanges(game, req.Changes); err != nil {
		return nil, err
	}
	if err := s.games.Update(ctx, game); err != nil {
		return nil, err
	}
	if err := s.changeRequests.UpdateStatus(ctx, req.ID, domain.ChangeRequestApproved); err != nil {
		return nil, err
	}

	if newImage, ok := req.Changes["image_url"]; ok && oldImage != "" && oldImage != newImage {
		_ = s.blobs.Remove(ctx, oldImage)
	}

	s.publishDecision(ctx, req, domain.ChangeRequestApproved)
	return game, nil
}

// RejectChangeRequest discards a pending edit and removes any image blob
// uploaded for it.
func (s *AdminService) RejectChangeRequest(ctx context.Context, requestID int64) (*domain.GameChangeRequest, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.changeRequests.UpdateStatus(ctx, req.ID, domain.ChangeRequestRejected); err != nil {
		return nil, err
	}
	if proposed, ok := req.Changes["image_url"]; ok && proposed != "" {
		_ = s.blobs.Remove(ctx, proposed)
	}

	req.Status = domain.ChangeRequestRejected
	s.publishDecision(ctx, req, domain.ChangeRequestRejected)
	return req, nil
}

// ListGuardRequests enumerates renter guard-code requests still waiting
// for an operator to fill in a code.
func (s *AdminService) ListGuardRequests(ctx context.Context, limit int) ([]verification.Pending, error) {
	return s.codes.ScanPending(ctx, verification.NamespaceGuardCode, limit)
}

// SetGuardCode records the operator-supplied code on an outstanding guard
// request so the renter's poll can pick it up.
func (s *AdminService) SetGuardCode(ctx context.Context, accountID int64, code string) error {
	err := s.codes.Complete(ctx, verification.NamespaceGuardCode, guardSubject(accountID), code, s.guardTTL)
	if errors.Is(err, verification.ErrNotFound) {
		return apperrors.NewNotFound("guard code request", map[string]any{"account_id": accountID})
	}
	return err
}

func (s *AdminService) pendingRequest(ctx context.Context, requestID int64) (*domain.GameChangeRequest, error) {
	req, err := s.changeRequests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("change request", map[string]any{"id": requestID})
		}
		return nil, err
	}
	if req.Status != domain.ChangeRequestPending {
		return nil, apperrors.NewConflict("change request already decided", map[string]any{"status": string(req.Status)})
	}
	return req, nil
}

func (s *AdminService) publishDecision(ctx context.Context, req *domain.GameChangeRequest, status domain.ChangeRequestStatus) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.NewEvent(events.EventChangeRequestDecided, "",
		events.ChangeRequestDecidedPayload{
			RequestID: req.ID,
			GameID:    req.GameID,
			Status:    status,
		}))
}

// applyGameChanges copies the whitelisted proposed values onto the game.
// Unknown keys are rejected rather than silently dropped.
func applyGameChanges(game *domain.Game, changes map[string]string) error {
	for field, value := range changes {
		switch field {
		case "title":
			game.Title = value
		case "genre":
			game.Genre = optional(value)
		case "description":
			game.Description = value
		case "image_url":
			game.ImageURL = value
		case "price_cents":
			cents, err := strconv.ParseInt(value, 10, 64)
			if err != nil || cents < 0 {
				return apperrors.NewValidationError("invalid price", map[string]any{"price_cents": value})
			}
			game.PriceCents = cents
		case "release_date":
			parsed, err := time.Parse("2006-01-02", value)
			if err != nil {
				return apperrors.NewValidationError("invalid release date", map[string]any{"release_date": value})
			}
			game.ReleaseDate = &parsed
		default:
			return apperrors.NewValidationError("unknown game field", map[string]any{"field": field})
		}
	}
	return nil
}
