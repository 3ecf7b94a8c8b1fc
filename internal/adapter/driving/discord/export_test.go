package discord

import "github.com/bwmarrin/discordgo"

// Responder re-exports the interaction response surface for fakes.
type Responder = responder

// SimulateReady, SimulateDisconnect and SimulateResumed feed gateway events
// to the bot without a live connection.
func (b *Bot) SimulateReady()      { b.onReady(b.session, &discordgo.Ready{}) }
func (b *Bot) SimulateDisconnect() { b.onDisconnect(b.session, &discordgo.Disconnect{}) }
func (b *Bot) SimulateResumed()    { b.onResumed(b.session, &discordgo.Resumed{}) }
