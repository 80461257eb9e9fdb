package cli

import (
	"context"
	"fmt"
)

func (a *App) History(ctx context.Context, _ []string) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	resp, err := a.api.GetHistory(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, resp.Message)
	for i, e := range resp.History {
		fmt.Fprintf(a.out, "%d. %s: %s (%s)\n", i+1, e.Time.Format("2006-01-02 15:04:05"), e.Operation, e.Details)
	}
	return nil
}

func (a *App) ClearHistory(ctx context.Context, _ []string) error {
	ok, err := Confirm(a.reader, "Delete the whole request history?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	resp, err := a.api.DeleteHistory(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}
