package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/avasilkov/giftcal/internal/models"
)

func (a *App) ListEvents(ctx context.Context) error {
	events, err := a.data.Events(ctx)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		printlnFn("No events yet.")
		return nil
	}
	for _, ev := range events {
		span := ""
		if ev.Start != "" || ev.End != "" {
			span = fmt.Sprintf(" %s-%s", ev.Start, ev.End)
		}
		printlnFn(fmt.Sprintf("%s  %s%s  [%s]  %s", ev.Id, ev.Date, span, ev.Category, ev.Title))
	}
	return nil
}

func (a *App) AddEvent(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	date, err := GetSimpleText(a.reader, "Date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	category, err := GetSimpleText(a.reader, "Category (work/personal/important/other, empty for other)", os.Stdout)
	if err != nil {
		return err
	}
	description, err := GetSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		return err
	}

	ev, err := a.data.AddEvent(ctx, models.Event{
		Title:       title,
		Date:        date,
		Category:    models.Category(category),
		Description: description,
	})
	if err != nil {
		return err
	}
	printlnFn("Added event", ev.Id)
	return nil
}

func (a *App) DeleteEvent(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Event id", os.Stdout)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	return a.data.DeleteEvent(ctx, id)
}
