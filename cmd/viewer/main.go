// Command viewer prints the stored feed as a table, newest first. It
// opens the database read-only, so it can run next to a live server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"message-feed/internal"
)

type diskMessage struct {
	ID     uuid.UUID `json:"id"`
	Text   string    `json:"text"`
	UserID uuid.UUID `json:"user_id"`
	At     time.Time `json:"at"`
}

func main() {
	limit := flag.Int("limit", 50, "maximum number of messages to print")
	flag.Parse()

	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// BypassLockGuard allows opening while the server holds the lock.
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Created At", "Message ID", "Author ID", "Text"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte("msg:")
		for it.Seek(append(prefix, []byte("9999999999999999999")...)); it.ValidForPrefix(prefix); it.Next() {
			if count == *limit {
				break
			}
			err := it.Item().Value(func(v []byte) error {
				var dm diskMessage
				if err := json.Unmarshal(v, &dm); err != nil {
					// Keep scanning; a single bad row should not hide the rest.
					fmt.Printf("Error unmarshaling key %s: %v\n", it.Item().Key(), err)
					return nil
				}
				table.Append([]string{
					dm.At.Format(time.RFC3339),
					dm.ID.String(),
					dm.UserID.String(),
					dm.Text,
				})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	color.Cyan.Printf("Feed (%d most recent messages)\n\n", count)
	table.Render()
}
