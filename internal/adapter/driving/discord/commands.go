package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/ericfisherdev/gyazobot/internal/domain/model"
)

// Slash command and option names.
const (
	cmdAuthenticate = "authenticate"
	cmdRandomPhoto  = "randomphoto"
	cmdUploadPhoto  = "uploadphoto"
	cmdLastImage    = "lastimage"

	optAccessToken = "access_token"
	optFile        = "file"
	optNumber      = "number"
)

// Commands returns the slash commands the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	minCount := float64(model.MinRecentCount)

	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdAuthenticate,
			Description: "Link your Gyazo account with an access token",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optAccessToken,
					Description: "Your Gyazo access token",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdRandomPhoto,
			Description: "Show a random image from your Gyazo account",
		},
		{
			Name:        cmdUploadPhoto,
			Description: "Upload an image to your Gyazo account",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        optFile,
					Description: "The image to upload",
					Required:    true,
				},
			},
		},
		{
			Name:        cmdLastImage,
			Description: "Show your most recent Gyazo images",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        optNumber,
					Description: "How many images to show (1-10)",
					MinValue:    &minCount,
					MaxValue:    float64(model.MaxRecentCount),
				},
			},
		},
	}
}

// optionMap indexes the top-level options of an invocation by name.
func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
