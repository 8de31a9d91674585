// Session Log Tool inspects and edits the stored analysis-chat transcripts.
//
// Usage:
//
//	go run ./tools/session_log -list
//	go run ./tools/session_log -session=<id>
//	go run ./tools/session_log -session=<id> -append="note text" -type=human
//	go run ./tools/session_log -new
//
// Configuration:
//
//	-list: List stored sessions, newest first
//	-session: Session id to show or append to
//	-append: Message content to append to the session
//	-type: Message type for -append (default: human)
//	-new: Print a fresh session id and exit
//
// Environment Variables:
//
//	S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET: Object store connection
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/chathistory"
	"github.com/AstroImad/adsnap/internal/config"
	"github.com/AstroImad/adsnap/internal/objectstore"
)

func main() {
	var (
		list      = flag.Bool("list", false, "list stored sessions, newest first")
		sessionID = flag.String("session", "", "session id to show or append to")
		appendMsg = flag.String("append", "", "message content to append")
		msgType   = flag.String("type", "human", "message type for -append")
		newID     = flag.Bool("new", false, "print a fresh session id and exit")
	)
	flag.Parse()

	if *newID {
		fmt.Println(chathistory.NewSessionID())
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	objStore, err := objectstore.New(config.Load())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to object store: %v\n", err)
		os.Exit(1)
	}
	store := chathistory.NewStore(objStore, logger)
	ctx := context.Background()

	switch {
	case *list:
		sessions, err := store.ListSessions(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing sessions: %v\n", err)
			os.Exit(1)
		}
		if len(sessions) == 0 {
			fmt.Println("No stored sessions.")
			return
		}
		for _, s := range sessions {
			fmt.Printf("%s  %s\n", s.LastModified.Format("2006-01-02 15:04:05"), s.SessionID)
		}

	case *sessionID != "" && *appendMsg != "":
		messages, err := store.Load(ctx, *sessionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
			os.Exit(1)
		}
		messages = append(messages, chathistory.Message{Type: *msgType, Content: *appendMsg})
		if err := store.Save(ctx, *sessionID, messages); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving session: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Appended to session %s (%d messages)\n", *sessionID, len(messages))

	case *sessionID != "":
		messages, err := store.Load(ctx, *sessionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading session: %v\n", err)
			os.Exit(1)
		}
		if len(messages) == 0 {
			fmt.Printf("Session %s is empty.\n", *sessionID)
			return
		}
		for i, m := range messages {
			fmt.Printf("%3d [%s] %s\n", i+1, m.Type, m.Content)
		}

	default:
		flag.Usage()
		os.Exit(1)
	}
}
