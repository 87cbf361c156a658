// controller/bot_controller.go
package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/model"
	"github.com/dev-mohitbeniwal/tokengate/service"
	"github.com/dev-mohitbeniwal/tokengate/telegram"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

const walletExample = "7Gk1v2Qw3e4r5t6y7u8i9oPkJhGfDsAqWeRtYuXoPm9a"

// BotController receives Telegram webhook updates and maps chat commands
// onto membership operations. Free-form text is treated as a wallet
// address only while the sender is in the awaiting-wallet state.
type BotController struct {
	membershipService service.IMembershipService
	notificationSvc   *util.NotificationService
	policy            model.Policy
	vipChannelLink    string

	awaitingWallet sync.Map // userID → struct{}
}

func NewBotController(
	membershipService service.IMembershipService,
	notificationSvc *util.NotificationService,
	policy model.Policy,
	vipChannelLink string,
) *BotController {
	return &BotController{
		membershipService: membershipService,
		notificationSvc:   notificationSvc,
		policy:            policy,
		vipChannelLink:    vipChannelLink,
	}
}

// RegisterRoutes registers the webhook endpoint.
func (bc *BotController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/telegram/webhook", bc.HandleUpdate)
}

// HandleUpdate is the webhook entry point. It always answers 200 so
// Telegram does not redeliver updates that failed internally; failures
// are logged and surfaced to the user through the notification sink.
func (bc *BotController) HandleUpdate(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid update payload", err)
		return
	}

	ctx := c.Request.Context()
	switch {
	case update.CallbackQuery != nil:
		bc.handleCallback(ctx, update.CallbackQuery)
	case update.ChatMember != nil:
		bc.handleChatMemberUpdate(ctx, update.ChatMember)
	case update.Message != nil && len(update.Message.NewChatMembers) > 0:
		bc.handleNewMembers(ctx, update.Message)
	case update.Message != nil && update.Message.From != nil:
		bc.handleMessage(ctx, update.Message)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (bc *BotController) handleMessage(ctx context.Context, msg *telegram.Message) {
	from := *msg.From
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "/") {
		command := text
		if i := strings.IndexAny(command, " @"); i > 0 {
			command = command[:i]
		}
		bc.handleCommand(ctx, from, command)
		return
	}

	if _, waiting := bc.awaitingWallet.Load(from.ChatID()); waiting {
		bc.handleWalletSubmission(ctx, from, text)
	}
	// Other free-form messages are ignored to avoid group spam.
}

func (bc *BotController) handleCommand(ctx context.Context, from telegram.User, command string) {
	logger.Info("Bot command received",
		zap.String("command", command),
		zap.String("userID", from.ChatID()),
		zap.String("username", from.Username))

	switch command {
	case "/start":
		bc.handleStart(ctx, from)
	case "/verify":
		bc.handleVerify(ctx, from, model.TriggerVerify)
	case "/vip":
		bc.handleVIP(ctx, from)
	case "/change":
		bc.awaitingWallet.Store(from.ChatID(), struct{}{})
		bc.reply(ctx, from,
			"Wallet update\n\nPlease send your new wallet address.\n\nExample: "+walletExample)
	case "/help":
		bc.handleHelp(ctx, from)
	case "/checkme":
		bc.handleVerify(ctx, from, model.TriggerManualCheck)
	}
}

func (bc *BotController) handleStart(ctx context.Context, from telegram.User) {
	user, err := bc.membershipService.GetUser(ctx, from.ChatID())
	if err == nil && user.Wallet != "" {
		bc.reply(ctx, from, fmt.Sprintf(
			"Wallet registered\n\nYour wallet: %s\n\nUse /vip to request channel access\nUse /verify to check your token balance\nUse /change to update your wallet",
			model.ShortWallet(user.Wallet)))
		return
	}

	keyboard := [][]telegram.InlineKeyboardButton{
		{{Text: "Connect Wallet", CallbackData: "connect_wallet"}},
		{{Text: "Manual Entry", CallbackData: "manual_entry"}},
	}
	text := fmt.Sprintf(
		"Welcome!\n\nHold a minimum of %.0f tokens to access the gated channel.\n\nChoose how to connect your wallet:",
		bc.policy.MinTokenAmount)
	if err := bc.notificationSvc.PromptUser(ctx, from.ChatID(), text, keyboard); err != nil {
		logger.Warn("Failed to prompt user for wallet", zap.Error(err), zap.String("userID", from.ChatID()))
	}
	bc.awaitingWallet.Store(from.ChatID(), struct{}{})
}

func (bc *BotController) handleWalletSubmission(ctx context.Context, from telegram.User, wallet string) {
	record := model.UserRecord{
		ID:       from.ChatID(),
		Name:     from.FirstName,
		Username: from.Username,
	}

	decision, err := bc.membershipService.RegisterWallet(ctx, record, wallet)
	if err != nil {
		switch {
		case errors.Is(err, gate_errors.ErrInvalidWalletAddress):
			bc.reply(ctx, from,
				"Invalid wallet address format.\n\nPlease send a valid 44-character address.\nExample: "+walletExample)
		case errors.Is(err, gate_errors.ErrBalanceUnavailable):
			bc.reply(ctx, from, "Unable to fetch wallet data right now. Please try again later.")
		default:
			logger.Error("Wallet registration failed", zap.Error(err), zap.String("userID", record.ID))
			bc.reply(ctx, from, "Something went wrong saving your wallet. Please try again.")
		}
		return
	}

	bc.awaitingWallet.Delete(from.ChatID())

	if decision.Granted {
		bc.reply(ctx, from, fmt.Sprintf(
			"Wallet verified! Found %.2f tokens.\n\nAccess granted.\nChannel: %s\nWallet saved: %s",
			decision.Balance, bc.vipChannelLink, model.ShortWallet(wallet)))
	} else {
		bc.reply(ctx, from, fmt.Sprintf(
			"Wallet verified! Found %.2f tokens.\n\nAccess denied: %s\n\nYou need a minimum of %.0f tokens. Add more tokens and use /verify to try again.",
			decision.Balance, decision.Rationale, bc.policy.MinTokenAmount))
	}
}

func (bc *BotController) handleVerify(ctx context.Context, from telegram.User, trigger string) {
	decision, err := bc.membershipService.CheckBalance(ctx, from.ChatID(), trigger)
	if err != nil {
		bc.replyCheckError(ctx, from, err)
		return
	}
	if decision.Unavailable {
		bc.reply(ctx, from, "Error checking balance: unable to fetch wallet data. Please try again later.")
		return
	}

	status := "Insufficient tokens for channel access. Use /start to learn more."
	if decision.Granted {
		status = "Sufficient tokens for channel access. Use /vip to request an invite."
	}
	user, _ := bc.membershipService.GetUser(ctx, from.ChatID())
	wallet := ""
	if user != nil {
		wallet = model.ShortWallet(user.Wallet)
	}
	bc.reply(ctx, from, fmt.Sprintf(
		"Token balance\n\nWallet: %s\nBalance: %.2f tokens\nRequired: %.0f tokens\n\n%s",
		wallet, decision.Balance, bc.policy.MinTokenAmount, status))
}

func (bc *BotController) handleVIP(ctx context.Context, from telegram.User) {
	decision, link, err := bc.membershipService.RequestAccess(ctx, from.ChatID())
	if err != nil {
		bc.replyCheckError(ctx, from, err)
		return
	}
	if decision.Unavailable {
		bc.reply(ctx, from, "Unable to verify your balance right now. Please try again later.")
		return
	}

	if decision.Granted {
		text := fmt.Sprintf("Access granted! You have %.2f tokens.", decision.Balance)
		if link != "" {
			text += "\n\nJoin here: " + link
		} else {
			text += "\n\nChannel access could not be issued automatically; please contact an admin."
		}
		bc.reply(ctx, from, text)
	} else {
		bc.reply(ctx, from, fmt.Sprintf(
			"Access denied\n\n%s\n\nYou need a minimum of %.0f tokens. Add more tokens and try again.",
			decision.Rationale, bc.policy.MinTokenAmount))
	}
}

func (bc *BotController) handleHelp(ctx context.Context, from telegram.User) {
	bc.reply(ctx, from, fmt.Sprintf(
		"Token gate bot\n\nHold a minimum of %.0f tokens for channel access.\n\nCommands:\n/start - register your wallet\n/verify - check your token balance\n/vip - request channel access\n/change - update your wallet address\n/checkme - run a manual check\n/help - show this message",
		bc.policy.MinTokenAmount))
}

func (bc *BotController) handleNewMembers(ctx context.Context, msg *telegram.Message) {
	for _, member := range msg.NewChatMembers {
		bc.welcomeMember(ctx, member)
	}
}

// handleChatMemberUpdate greets users whose join arrives as a member
// status change rather than a new_chat_members message. Promotions and
// demotions between joined states are not joins and stay silent.
func (bc *BotController) handleChatMemberUpdate(ctx context.Context, upd *telegram.ChatMemberUpdated) {
	if upd.NewChatMember.Status != "member" {
		return
	}
	switch upd.OldChatMember.Status {
	case "", "left", "kicked":
	default:
		return
	}
	bc.welcomeMember(ctx, upd.NewChatMember.User)
}

func (bc *BotController) welcomeMember(ctx context.Context, member telegram.User) {
	if member.IsBot {
		return
	}
	name := member.FirstName
	if name == "" {
		name = "there"
	}

	if err := bc.notificationSvc.NotifyGroup(ctx, fmt.Sprintf(
		"Welcome to the group, %s!\n\nHold a minimum of %.0f tokens to get access to the gated channel. Check your private messages for wallet verification instructions.",
		name, bc.policy.MinTokenAmount)); err != nil {
		logger.Warn("Failed to post group welcome", zap.Error(err))
	}

	keyboard := [][]telegram.InlineKeyboardButton{
		{{Text: "Connect Wallet", CallbackData: "connect_wallet"},
			{Text: "Manual Entry", CallbackData: "manual_entry"}},
	}
	text := fmt.Sprintf(
		"Welcome, %s!\n\nHold a minimum of %.0f tokens to get access to the gated channel.\n\nPlease provide your wallet address to verify your token balance.\nExample: %s",
		name, bc.policy.MinTokenAmount, walletExample)
	if err := bc.notificationSvc.PromptUser(ctx, member.ChatID(), text, keyboard); err != nil {
		logger.Warn("Failed to send private welcome", zap.Error(err), zap.String("userID", member.ChatID()))
	}
	bc.awaitingWallet.Store(member.ChatID(), struct{}{})
}

func (bc *BotController) handleCallback(ctx context.Context, query *telegram.CallbackQuery) {
	if err := bc.notificationSvc.AckCallback(ctx, query.ID); err != nil {
		logger.Warn("Failed to answer callback query", zap.Error(err), zap.String("callbackID", query.ID))
	}

	switch query.Data {
	case "connect_wallet":
		bc.reply(ctx, query.From,
			"Wallet connection guide\n\n1. Open your wallet app\n2. Copy your wallet address\n3. Paste it here\n\nSend your wallet address now:")
		bc.awaitingWallet.Store(query.From.ChatID(), struct{}{})
	case "manual_entry":
		bc.reply(ctx, query.From,
			"Manual wallet entry\n\nPlease send your wallet address. It should be 44 characters long.\n\nExample: "+walletExample+"\n\nSend your wallet address now:")
		bc.awaitingWallet.Store(query.From.ChatID(), struct{}{})
	}
}

func (bc *BotController) replyCheckError(ctx context.Context, from telegram.User, err error) {
	if errors.Is(err, gate_errors.ErrNoWalletRegistered) {
		bc.reply(ctx, from, "No wallet found. Please use /start to register your wallet first.")
		return
	}
	logger.Error("Command handling failed", zap.Error(err), zap.String("userID", from.ChatID()))
	bc.reply(ctx, from, "Something went wrong. Please try again later.")
}

func (bc *BotController) reply(ctx context.Context, to telegram.User, text string) {
	if err := bc.notificationSvc.NotifyUserWithFallback(ctx, to.ChatID(), text); err != nil {
		logger.Warn("Failed to deliver reply", zap.Error(err), zap.String("userID", to.ChatID()))
	}
}
