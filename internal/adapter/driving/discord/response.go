package discord

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
)

// User-facing reply texts.
const (
	msgAuthenticated      = "Authentication successful."
	msgCountOutOfRange    = "Please request between 1 and 10 images."
	msgNotAuthenticated   = "Please authenticate first using the /authenticate command."
	msgNoImages           = "No images found in your Gyazo account."
	msgNoDownloads        = "There was an issue retrieving the images."
	msgUploadedNoLink     = "Image uploaded successfully, but Gyazo returned no link."
	msgMissingAttachment  = "no attachment was provided"
	embedTitle            = "Gyazo Image"
	embedColor            = 0x1E88E5
	prefixFetchError      = "Error fetching images: "
	prefixUploadError     = "Error uploading image: "
	prefixGenericError    = "Error: "
	formatRandomImage     = "Random image: %s"
	formatUploaded        = "Image uploaded successfully!\nView it here: %s"
	formatPartialDownload = "%d of %d images could not be retrieved."
)

// reply is the content that replaces the deferred interaction response.
type reply struct {
	content string
	embed   *discordgo.MessageEmbed
	files   []model.ImageFile
}

func textReply(format string, args ...any) reply {
	return reply{content: fmt.Sprintf(format, args...)}
}

// webhookEdit converts r into the edit payload for the original response.
func (r reply) webhookEdit() *discordgo.WebhookEdit {
	edit := &discordgo.WebhookEdit{}
	if r.content != "" {
		content := r.content
		edit.Content = &content
	}
	if r.embed != nil {
		edit.Embeds = &[]*discordgo.MessageEmbed{r.embed}
	}
	for _, f := range r.files {
		edit.Files = append(edit.Files, &discordgo.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(f.Data),
		})
	}
	return edit
}

func imageEmbed(img model.Image) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: embedTitle,
		URL:   img.PermalinkURL,
		Color: embedColor,
		Image: &discordgo.MessageEmbedImage{URL: img.URL},
	}
	if !img.CreatedAt.IsZero() {
		embed.Timestamp = img.CreatedAt.Format(time.RFC3339)
	}
	return embed
}

func recentReply(result model.RecentImages) reply {
	if result.Embed != nil {
		return reply{embed: imageEmbed(*result.Embed)}
	}

	r := reply{files: result.Files}
	if result.Failed > 0 {
		r.content = fmt.Sprintf(formatPartialDownload, result.Failed, result.Failed+len(result.Files))
	}
	return r
}

func uploadReply(result model.UploadResult) reply {
	if result.PermalinkURL == "" {
		return reply{content: msgUploadedNoLink}
	}
	return textReply(formatUploaded, result.PermalinkURL)
}

// errorReply maps a use-case error to the message shown to the user. Known
// conditions get fixed texts; anything else is prefixed per command.
func errorReply(command string, err error) reply {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Field == "count" {
			return reply{content: msgCountOutOfRange}
		}
		return reply{content: prefixGenericError + validationErr.Error()}
	}

	switch {
	case errors.Is(err, model.ErrNotAuthenticated):
		return reply{content: msgNotAuthenticated}
	case errors.Is(err, model.ErrNoImages):
		return reply{content: msgNoImages}
	case errors.Is(err, model.ErrNoDownloads):
		return reply{content: msgNoDownloads}
	}

	detail := err.Error()
	var transportErr *model.TransportError
	if errors.As(err, &transportErr) {
		detail = transportErr.Error()
	}

	switch command {
	case cmdRandomPhoto, cmdLastImage:
		return reply{content: prefixFetchError + detail}
	case cmdUploadPhoto:
		return reply{content: prefixUploadError + detail}
	default:
		return reply{content: prefixGenericError + detail}
	}
}
