package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const primesPerLine = 10

var (
	errLimitNotPositive = errors.New("limit must be a positive integer")
	errSaveLimit        = errors.New("limit must be at least 2")
	errEmptyName        = errors.New("name must not be empty")
)

func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config != nil && a.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, a.config.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (a *App) intArgOrPrompt(args []string, i int, prompt string) (int, error) {
	if len(args) > i {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", args[i])
		}
		return n, nil
	}
	return GetInt(a.reader, prompt, a.out)
}

// printPrimes writes primes primesPerLine to a line.
func (a *App) printPrimes(primes []int) {
	for i := 0; i < len(primes); i += primesPerLine {
		end := min(i+primesPerLine, len(primes))
		parts := make([]string, 0, end-i)
		for _, p := range primes[i:end] {
			parts = append(parts, strconv.Itoa(p))
		}
		fmt.Fprintln(a.out, strings.Join(parts, " "))
	}
}

func (a *App) Generate(ctx context.Context, args []string) error {
	limit, err := a.intArgOrPrompt(args, 0, "Upper bound (n)")
	if err != nil {
		return err
	}
	if limit < 1 {
		return errLimitNotPositive
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	resp, err := a.api.Generate(ctx, limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, resp.Message)
	a.printPrimes(resp.Primes)
	return nil
}

func (a *App) Current(ctx context.Context, _ []string) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	resp, err := a.api.GetCurrent(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, resp.Message)
	fmt.Fprintf(a.out, "Upper bound: %d\n", resp.Params.Limit)
	a.printPrimes(resp.Primes)
	return nil
}

func (a *App) ClearCurrent(ctx context.Context, _ []string) error {
	ok, err := Confirm(a.reader, "Delete the current result?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	resp, err := a.api.DeleteCurrent(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}

func (a *App) SaveParams(ctx context.Context, args []string) error {
	name, err := a.argOrPrompt(args, 0, "Name")
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return errEmptyName
	}
	limit, err := a.intArgOrPrompt(args, 1, "Upper bound (n)")
	if err != nil {
		return err
	}
	if limit < 2 {
		return errSaveLimit
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	resp, err := a.api.SaveParams(ctx, name, limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, resp.Message)
	fmt.Fprintf(a.out, "Name: %s\nTotal saved: %d\n", resp.Name, resp.TotalSaved)
	return nil
}

func (a *App) ListSaved(ctx context.Context, _ []string) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	resp, err := a.api.ListSavedParams(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, resp.Message)
	for i, p := range resp.Params {
		fmt.Fprintf(a.out, "%d. %s: limit=%d (%s)\n", i+1, p.Name, p.Limit, p.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *App) DeleteSaved(ctx context.Context, args []string) error {
	name, err := a.argOrPrompt(args, 0, "Name of the saved params")
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return errEmptyName
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete params '%s'?", name), a.out)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	resp, err := a.api.DeleteSavedParams(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, resp.Message)
	fmt.Fprintf(a.out, "Deleted: %s\nRemaining: %d\n", resp.DeletedName, resp.Remaining)
	return nil
}
