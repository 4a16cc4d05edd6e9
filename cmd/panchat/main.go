package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/mbeoliero/kit/log"

	"github.com/archiveone/panchat/internal/api"
	"github.com/archiveone/panchat/internal/config"
	"github.com/archiveone/panchat/internal/entity"
	"github.com/archiveone/panchat/internal/realtime"
	"github.com/archiveone/panchat/internal/session"
	"github.com/archiveone/panchat/pkg/token"
)

// logSink prints pushed notifications; the real app routes them to the
// notification bell.
type logSink struct{}

func (logSink) OnNotification(n *entity.Notification) {
	log.Info("notification: kind=%s, actor=%s", n.Kind, n.ActorId)
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	ctx := context.TODO()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.CtxError(ctx, "failed to load config: %v", err)
		panic(err)
	}

	sessionToken := cfg.Auth.Token
	if envToken := os.Getenv("PANCHAT_TOKEN"); envToken != "" {
		sessionToken = envToken
	}

	auth, err := token.NewSession(sessionToken)
	if err != nil {
		log.CtxError(ctx, "invalid session token: %v", err)
		panic(err)
	}
	userId, _ := auth.CurrentUserID()
	log.CtxInfo(ctx, "signed in: user_id=%s", userId)

	client, err := api.NewClient(cfg.API.BaseURL, api.WithToken(auth.Token()))
	if err != nil {
		log.CtxError(ctx, "failed to create api client: %v", err)
		panic(err)
	}

	dialer := realtime.NewDialer(cfg.WebSocket, auth.Token())
	sess := session.New(cfg, auth, client, dialer, logSink{})

	convs, err := sess.ListConversations(ctx)
	if err != nil {
		log.CtxError(ctx, "failed to load conversations: %v", err)
		panic(err)
	}
	for _, conv := range convs {
		log.CtxInfo(ctx, "conversation: id=%s, group=%v, unread=%d", conv.Id, conv.IsGroup, conv.UnreadCount)
	}

	if err := sess.OpenInbox(ctx); err != nil {
		log.CtxError(ctx, "failed to open inbox: %v", err)
		panic(err)
	}
	log.CtxInfo(ctx, "inbox open, receiving realtime events")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.CtxInfo(ctx, "shutting down...")
	if err := sess.CloseInbox(); err != nil {
		log.CtxError(ctx, "close inbox error: %v", err)
	}
	log.CtxInfo(ctx, "stopped")
}
