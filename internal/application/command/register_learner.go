package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/learnhub/learnhub-backend/internal/domain/learner"
	"github.com/learnhub/learnhub-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER LEARNER COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RegisterLearnerCommand contains the data to register a learner.
type RegisterLearnerCommand struct {
	// Username is the unique login name.
	Username string

	// DisplayName is the name shown on leaderboards; defaults to Username.
	DisplayName string

	// Role is the platform role; defaults to student.
	Role string
}

// Validate validates the command. Field rules live in the learner factory;
// this only rejects the trivially empty case early.
func (c RegisterLearnerCommand) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("register_learner: username is required")
	}
	return nil
}

// RegisterLearnerResult contains the created learner.
type RegisterLearnerResult struct {
	Learner *learner.Learner
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RegisterLearnerHandler handles the RegisterLearnerCommand.
type RegisterLearnerHandler struct {
	learners learner.Repository
	logger   *logger.Logger
}

// NewRegisterLearnerHandler creates a new RegisterLearnerHandler.
func NewRegisterLearnerHandler(learners learner.Repository, log *logger.Logger) *RegisterLearnerHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RegisterLearnerHandler{
		learners: learners,
		logger:   log.With(logger.Component("register_learner")),
	}
}

// Handle executes the register learner command.
func (h *RegisterLearnerHandler) Handle(ctx context.Context, cmd RegisterLearnerCommand) (*RegisterLearnerResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	l, err := learner.NewLearner(learner.NewLearnerParams{
		ID:          uuid.NewString(),
		Username:    cmd.Username,
		DisplayName: cmd.DisplayName,
		Role:        cmd.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("register_learner: %w", err)
	}

	if err := h.learners.Create(ctx, l); err != nil {
		return nil, err
	}

	h.logger.Info("learner registered",
		logger.LearnerID(l.ID),
		logger.Username(l.Username),
	)

	return &RegisterLearnerResult{Learner: l}, nil
}
