package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BilyiPJATK/librarystore/catalog"
	"github.com/BilyiPJATK/librarystore/catalog/postgresengine"
	"github.com/BilyiPJATK/librarystore/config"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with sample data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context())
		},
	}
}

// runSeed creates a small sample data set: two publishers with one
// book and one copy each, two members, a staff profile and a short
// borrowing history on one of the copies.
func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	pool, err := cfg.DB.NewPGXPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := postgresengine.NewStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
	if err != nil {
		return err
	}

	if err = store.EnsureSchema(ctx); err != nil {
		return err
	}

	publisher1 := catalog.Publisher{Name: "Penguin Books", Address: "123 Penguin St.", PhoneNumber: "555-1322"}
	if err = store.Publishers().Create(ctx, &publisher1); err != nil {
		return err
	}

	publisher2 := catalog.Publisher{Name: "Secker & Warburg", Address: "456 Carnaby Rd.", PhoneNumber: "555-5678"}
	if err = store.Publishers().Create(ctx, &publisher2); err != nil {
		return err
	}

	book1 := catalog.Book{
		Title:           "The Great Gatsby",
		Author:          "F. Scott Fitzgerald",
		PublicationYear: 1925,
		ISBN:            "978-0743273565",
		PublisherID:     publisher1.ID,
	}
	if err = store.Books().Create(ctx, &book1); err != nil {
		return err
	}

	book2 := catalog.Book{
		Title:           "1984",
		Author:          "George Orwell",
		PublicationYear: 1949,
		ISBN:            "978-0451524935",
		PublisherID:     publisher2.ID,
	}
	if err = store.Books().Create(ctx, &book2); err != nil {
		return err
	}

	user1 := catalog.User{Name: "Mat Doe", Email: "mat1@gmail.com", PhoneNumber: "555-1234", Address: "123 Main St."}
	if err = store.RegisterUser(ctx, &user1); err != nil {
		return err
	}

	user2 := catalog.User{Name: "Kale Smith", Email: "kale1@yahoo.com", PhoneNumber: "555-5678", Address: "456 Elm St."}
	if err = store.RegisterUser(ctx, &user2); err != nil {
		return err
	}

	librarian := catalog.Librarian{UserID: user2.ID, Position: catalog.PositionDesk}
	if librarian.EmploymentDate, err = catalog.ParseDate("2020-01-15"); err != nil {
		return err
	}
	if err = store.Librarians().Create(ctx, &librarian); err != nil {
		return err
	}

	copy1 := catalog.Copy{BookID: book1.ID, CopyNumber: 1011001, Status: catalog.CopyStatusAvailable}
	if err = store.Copies().Create(ctx, &copy1); err != nil {
		return err
	}

	copy2 := catalog.Copy{BookID: book2.ID, CopyNumber: 1001102, Status: catalog.CopyStatusAvailable}
	if err = store.Copies().Create(ctx, &copy2); err != nil {
		return err
	}

	loanWindows := [][2]string{
		{"2026-01-10", "2026-01-20"},
		{"2026-02-10", "2026-02-20"},
		{"2026-03-10", "2026-03-20"},
	}

	for _, window := range loanWindows {
		if err = seedClosedLoan(ctx, store, user1.ID, copy2.ID, window[0], window[1]); err != nil {
			return err
		}
	}

	logger.Info("sample data created",
		"publishers", 2, "books", 2, "users", 2, "copies", 2, "borrowings", len(loanWindows))

	return nil
}

func seedClosedLoan(
	ctx context.Context,
	store *postgresengine.Store,
	userID int64,
	copyID int64,
	borrowedOn string,
	returnedOn string,
) error {
	borrowDate, err := catalog.ParseDate(borrowedOn)
	if err != nil {
		return err
	}

	returnDate, err := catalog.ParseDate(returnedOn)
	if err != nil {
		return err
	}

	borrowing, err := store.BorrowCopy(ctx, userID, copyID, borrowDate)
	if err != nil {
		return fmt.Errorf("seeding loan failed: %w", err)
	}

	if _, err = store.ReturnCopy(ctx, borrowing.ID, returnDate); err != nil {
		return fmt.Errorf("seeding loan return failed: %w", err)
	}

	return nil
}
