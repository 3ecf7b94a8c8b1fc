package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
	"github.com/ericfisherdev/gyazobot/internal/domain/port/driven"
)

// imageService is the subset of application.ImageService the handler drives.
type imageService interface {
	Authenticate(ctx context.Context, userID int64, token string) error
	RandomImage(ctx context.Context, userID int64) (model.Image, error)
	RecentImages(ctx context.Context, userID int64, count int) (model.RecentImages, error)
	UploadImage(ctx context.Context, userID int64, upload model.Upload) (model.UploadResult, error)
}

// responder is the part of *discordgo.Session used to answer interactions.
type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ responder = (*discordgo.Session)(nil)

// Handler is the Discord driving adapter. It turns slash command
// interactions into ImageService calls and edits the deferred ephemeral
// response with the outcome.
type Handler struct {
	svc         imageService
	attachments driven.ImageDownloader
	logger      *slog.Logger
}

// NewHandler creates a Handler. attachments is used to read files users
// attach to /uploadphoto.
func NewHandler(svc imageService, attachments driven.ImageDownloader, logger *slog.Logger) *Handler {
	return &Handler{
		svc:         svc,
		attachments: attachments,
		logger:      logger,
	}
}

// HandleInteraction processes one interaction. Non-command interactions are
// ignored. Every reply is ephemeral.
func (h *Handler) HandleInteraction(ctx context.Context, r responder, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	logger := h.logger.With("request_id", uuid.NewString(), "command", data.Name)

	err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		logger.Error("failed to acknowledge interaction", "error", err)
		return
	}

	var out reply
	userID, err := interactionUserID(i.Interaction)
	if err != nil {
		logger.Error("unusable interaction user", "error", err)
		out = errorReply(data.Name, err)
	} else {
		logger = logger.With("user_id", userID)
		out = h.dispatch(ctx, logger, userID, data)
	}

	if _, err := r.InteractionResponseEdit(i.Interaction, out.webhookEdit()); err != nil {
		logger.Error("failed to send interaction reply", "error", err)
	}
}

func (h *Handler) dispatch(ctx context.Context, logger *slog.Logger, userID int64, data discordgo.ApplicationCommandInteractionData) reply {
	opts := optionMap(data.Options)

	var (
		out reply
		err error
	)
	switch data.Name {
	case cmdAuthenticate:
		out, err = h.authenticate(ctx, userID, opts)
	case cmdRandomPhoto:
		out, err = h.randomPhoto(ctx, userID)
	case cmdUploadPhoto:
		out, err = h.uploadPhoto(ctx, userID, opts, data.Resolved)
	case cmdLastImage:
		out, err = h.lastImage(ctx, userID, opts)
	default:
		err = fmt.Errorf("unknown command %q", data.Name)
	}

	if err != nil {
		logCommandError(logger, err)
		return errorReply(data.Name, err)
	}

	logger.Info("command completed")
	return out
}

func (h *Handler) authenticate(ctx context.Context, userID int64, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (reply, error) {
	var token string
	if opt, ok := opts[optAccessToken]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		token = opt.StringValue()
	}

	if err := h.svc.Authenticate(ctx, userID, token); err != nil {
		return reply{}, err
	}
	return reply{content: msgAuthenticated}, nil
}

func (h *Handler) randomPhoto(ctx context.Context, userID int64) (reply, error) {
	img, err := h.svc.RandomImage(ctx, userID)
	if err != nil {
		return reply{}, err
	}
	return textReply(formatRandomImage, img.URL), nil
}

func (h *Handler) lastImage(ctx context.Context, userID int64, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) (reply, error) {
	count := model.MinRecentCount
	if opt, ok := opts[optNumber]; ok && opt.Type == discordgo.ApplicationCommandOptionInteger {
		count = int(opt.IntValue())
	}

	result, err := h.svc.RecentImages(ctx, userID, count)
	if err != nil {
		return reply{}, err
	}
	return recentReply(result), nil
}

func (h *Handler) uploadPhoto(
	ctx context.Context,
	userID int64,
	opts map[string]*discordgo.ApplicationCommandInteractionDataOption,
	resolved *discordgo.ApplicationCommandInteractionDataResolved,
) (reply, error) {
	att, err := resolveAttachment(opts[optFile], resolved)
	if err != nil {
		return reply{}, err
	}

	data, err := h.attachments.Download(ctx, att.URL)
	if err != nil {
		return reply{}, fmt.Errorf("read attachment: %w", err)
	}

	result, err := h.svc.UploadImage(ctx, userID, model.Upload{
		Filename:    att.Filename,
		ContentType: att.ContentType,
		Data:        data,
	})
	if err != nil {
		return reply{}, err
	}
	return uploadReply(result), nil
}

func resolveAttachment(
	opt *discordgo.ApplicationCommandInteractionDataOption,
	resolved *discordgo.ApplicationCommandInteractionDataResolved,
) (*discordgo.MessageAttachment, error) {
	missing := &model.ValidationError{Field: optFile, Message: msgMissingAttachment}
	if opt == nil || resolved == nil {
		return nil, missing
	}

	id, ok := opt.Value.(string)
	if !ok {
		return nil, missing
	}
	att, ok := resolved.Attachments[id]
	if !ok || att == nil {
		return nil, missing
	}
	return att, nil
}

// interactionUserID returns the invoking user's id. Guild interactions carry
// the user on Member; direct messages carry it on User.
func interactionUserID(i *discordgo.Interaction) (int64, error) {
	var user *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		user = i.Member.User
	case i.User != nil:
		user = i.User
	default:
		return 0, errors.New("interaction has no user")
	}

	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse user id %q: %w", user.ID, err)
	}
	return id, nil
}

// logCommandError logs expected user-facing conditions at info and
// everything else at error.
func logCommandError(logger *slog.Logger, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) ||
		errors.Is(err, model.ErrNotAuthenticated) ||
		errors.Is(err, model.ErrEmptyResult) {
		logger.Info("command rejected", "reason", err)
		return
	}
	logger.Error("command failed", "error", err)
}
