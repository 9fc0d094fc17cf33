package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/avasilkov/giftcal/internal/models"
)

func (a *App) ListLists(ctx context.Context) error {
	lists, err := a.data.WishlistLists(ctx)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		printlnFn("No wishlist collections yet.")
		return nil
	}
	for _, l := range lists {
		printlnFn(fmt.Sprintf("%s  %s", l.Id, l.Title))
	}
	return nil
}

func (a *App) AddList(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Collection title", os.Stdout)
	if err != nil {
		return err
	}
	description, err := GetSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		return err
	}
	list, err := a.data.AddWishlistList(ctx, models.WishlistList{Title: title, Description: description})
	if err != nil {
		return err
	}
	printlnFn("Added collection", list.Id)
	return nil
}

func (a *App) ListWishlist(ctx context.Context, listID string) error {
	items, err := a.data.WishlistItems(ctx, listID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printlnFn("No wishlist items.")
		return nil
	}
	for _, it := range items {
		mark := " "
		if it.Status == models.StatusPurchased {
			mark = "x"
		}
		printlnFn(fmt.Sprintf("[%s] %s  %s", mark, it.Id, it.Name))
	}
	return nil
}

func (a *App) AddWishlistItem(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Item name", os.Stdout)
	if err != nil {
		return err
	}
	url, err := GetSimpleText(a.reader, "Link (optional)", os.Stdout)
	if err != nil {
		return err
	}
	listID, err := GetSimpleText(a.reader, "Collection id (empty for the flat wishlist)", os.Stdout)
	if err != nil {
		return err
	}
	item, err := a.data.AddWishlistItem(ctx, models.WishlistItem{Name: name, Url: url, ListId: listID})
	if err != nil {
		return err
	}
	printlnFn("Added item", item.Id)
	return nil
}

func (a *App) ToggleWishlistItem(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Item id", os.Stdout)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}

	// Lookup across all items so a scoped item can be toggled without
	// knowing its collection.
	item, err := a.findItem(ctx, id)
	if err != nil {
		return err
	}
	item.Status = item.Status.Toggle()
	if err := a.data.UpdateWishlistItem(ctx, item); err != nil {
		return err
	}
	printlnFn("Item is now", string(item.Status))
	return nil
}

func (a *App) DeleteWishlistItem(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Item id", os.Stdout)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	return a.data.DeleteWishlistItem(ctx, id)
}

func (a *App) findItem(ctx context.Context, id string) (models.WishlistItem, error) {
	flat, err := a.data.WishlistItems(ctx, "")
	if err != nil {
		return models.WishlistItem{}, err
	}
	for _, it := range flat {
		if it.Id == id {
			return it, nil
		}
	}
	lists, err := a.data.WishlistLists(ctx)
	if err != nil {
		return models.WishlistItem{}, err
	}
	for _, l := range lists {
		scoped, err := a.data.WishlistItems(ctx, l.Id)
		if err != nil {
			return models.WishlistItem{}, err
		}
		for _, it := range scoped {
			if it.Id == id {
				return it, nil
			}
		}
	}
	return models.WishlistItem{}, fmt.Errorf("no wishlist item with id %s", id)
}
