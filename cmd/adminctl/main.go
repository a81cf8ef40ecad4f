// Command adminctl bootstraps a MathEvolve database: it creates staff
// accounts and loads topic, content and quiz seed data.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mathevolve/mathevolve-api/internal/assessment"
	auth "github.com/mathevolve/mathevolve-api/internal/auth/middleware"
	"github.com/mathevolve/mathevolve-api/internal/config"
	"github.com/mathevolve/mathevolve-api/internal/content"
	"github.com/mathevolve/mathevolve-api/internal/db"
)

//go:embed seed.json
var demoSeed []byte

func usage() {
	fmt.Fprintf(os.Stderr, `usage: adminctl <command> [flags]

commands:
  create-user  -username NAME -password PASS [-role teacher|admin]
  seed         [-file seed.json]   load topics, content and quizzes (built-in demo set by default)
`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	switch os.Args[1] {
	case "create-user":
		err = createUser(ctx, auth.NewUserStore(dbh), os.Args[2:])
	case "seed":
		err = seed(ctx, dbh, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func createUser(ctx context.Context, users *auth.UserStore, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "password (min 8 characters)")
	role := fs.String("role", auth.RoleTeacher, "teacher or admin")
	_ = fs.Parse(args)
	if *username == "" || len(*password) < 8 {
		return errors.New("create-user: -username and a -password of at least 8 characters are required")
	}

	u, err := users.Create(ctx, *username, *password, *role)
	if errors.Is(err, auth.ErrUsernameTaken) {
		log.Printf("user %q already exists, nothing to do", *username)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create-user: %w", err)
	}
	log.Printf("created %s %q (%s)", u.Role, u.Username, u.ID)
	return nil
}

type seedFile struct {
	Topics  []content.Topic   `json:"topics"`
	Content []content.Content `json:"content"`
	Quizzes []assessment.Quiz `json:"quizzes"`
}

func seed(ctx context.Context, dbh *sqlx.DB, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "seed file (JSON); built-in demo set when empty")
	_ = fs.Parse(args)

	raw := demoSeed
	if *file != "" {
		b, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		raw = b
	}
	sf, err := loadSeed(ctx, dbh, raw)
	if err != nil {
		return err
	}
	log.Printf("seeded %d topics, %d content items, %d quizzes", len(sf.Topics), len(sf.Content), len(sf.Quizzes))
	return nil
}

// loadSeed upserts everything in raw in one transaction; on error nothing
// is written.
func loadSeed(ctx context.Context, dbh *sqlx.DB, raw []byte) (seedFile, error) {
	var sf seedFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return seedFile{}, fmt.Errorf("seed: parse: %w", err)
	}
	err := db.InTx(ctx, dbh, func(tx *sqlx.Tx) error {
		topics := content.NewSQLStore(tx)
		for _, t := range sf.Topics {
			if err := topics.PutTopic(ctx, t); err != nil {
				return fmt.Errorf("seed topic %s: %w", t.ID, err)
			}
		}
		for _, c := range sf.Content {
			if err := topics.PutContent(ctx, c); err != nil {
				return fmt.Errorf("seed content %s: %w", c.ID, err)
			}
		}
		quizzes := assessment.NewSQLStore(tx)
		for _, q := range sf.Quizzes {
			if err := quizzes.PutQuiz(ctx, q); err != nil {
				return fmt.Errorf("seed quiz %s: %w", q.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return seedFile{}, err
	}
	return sf, nil
}
