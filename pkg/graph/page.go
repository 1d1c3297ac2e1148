package graph

import (
	"context"
	"fmt"

	"github.com/noverloop/koala/internal/constants"
)

// Cursors are the opaque positions of a page within its collection.
type Cursors struct {
	Before string
	After  string
}

// Paging carries the links from one page to its neighbors. Cursor-based and
// link-based styles are never mixed within a single page: when cursors are
// present they win, otherwise the legacy full next/previous URLs are used.
type Paging struct {
	Cursors  Cursors
	Next     string
	Previous string
}

// Page is an immutable view over one fetched slice of a collection plus the
// cursors to its neighbors. Advancing issues a fresh dispatched call and
// yields a new Page; the receiver never mutates.
type Page struct {
	items  []interface{}
	raw    map[string]interface{}
	paging Paging
	call   Call
	client *Client
}

// wrapPage wraps an array-shaped result ("data" key holding an ordered
// sequence) into a Page. Any other shape passes through untouched.
func (c *Client) wrapPage(body interface{}, call Call) interface{} {
	object, ok := body.(map[string]interface{})
	if !ok {
		return body
	}

	data, ok := object["data"].([]interface{})
	if !ok {
		return body
	}

	return &Page{
		items:  data,
		raw:    object,
		paging: parsePaging(object),
		call:   call,
		client: c,
	}
}

// Items returns the objects of this page in order. The returned slice is a
// copy; iterating it repeatedly always re-yields the same page contents.
func (p *Page) Items() []interface{} {
	items := make([]interface{}, len(p.items))
	copy(items, p.items)

	return items
}

// Len returns the number of items on this page.
func (p *Page) Len() int {
	return len(p.items)
}

// Raw returns the decoded body the page was derived from.
func (p *Page) Raw() map[string]interface{} {
	return p.raw
}

// Paging returns the cursor links of this page.
func (p *Page) Paging() Paging {
	return p.paging
}

// HasNext reports whether the page carries a forward cursor. Cursor-style
// services keep returning cursors on the terminal page, so an empty page is
// treated as the end of the collection regardless of its cursors; otherwise
// iteration would re-fetch empty pages until the page cap.
func (p *Page) HasNext() bool {
	if len(p.items) == 0 {
		return false
	}

	return p.paging.Cursors.After != "" || p.paging.Next != ""
}

// HasPrevious reports whether the page carries a backward cursor.
func (p *Page) HasPrevious() bool {
	return p.paging.Cursors.Before != "" || p.paging.Previous != ""
}

// Next fetches the following page. It fails with ErrNoSuchPage when the page
// carries no forward cursor; that is an argument condition, not a transport
// failure.
func (p *Page) Next(ctx context.Context) (*Page, error) {
	return p.advance(ctx, p.paging.Cursors.After, p.paging.Next, "after", "before")
}

// Previous fetches the preceding page, with the same error contract as Next.
func (p *Page) Previous(ctx context.Context) (*Page, error) {
	return p.advance(ctx, p.paging.Cursors.Before, p.paging.Previous, "before", "after")
}

func (p *Page) advance(ctx context.Context, cursor, link, cursorKey, oppositeKey string) (*Page, error) {
	var call Call

	switch {
	case cursor != "":
		// Cursor style: re-issue the originating call with the cursor
		// folded into its arguments.
		args := cloneParams(p.call.Args)
		delete(args, oppositeKey)
		args[cursorKey] = cursor

		call = Call{
			Target:     p.call.Target,
			Connection: p.call.Connection,
			Verb:       VerbGet,
			Args:       args,
			Options:    p.call.Options,
		}

	case link != "":
		// Legacy link style: the URL already carries the full query.
		call = Call{Target: link, Verb: VerbGet, Options: p.call.Options}

	default:
		return nil, fmt.Errorf("%w: %s", ErrNoSuchPage, cursorKey)
	}

	result, err := p.client.Do(ctx, call)
	if err != nil {
		return nil, err
	}

	page, ok := result.(*Page)
	if !ok {
		return nil, fmt.Errorf("%w: paged fetch of %s", ErrNotACollection, p.call.Target)
	}

	return page, nil
}

// parsePaging extracts the paging block of a decoded collection body.
func parsePaging(object map[string]interface{}) Paging {
	var paging Paging

	block, ok := object["paging"].(map[string]interface{})
	if !ok {
		return paging
	}

	if cursors, ok := block["cursors"].(map[string]interface{}); ok {
		paging.Cursors.Before, _ = cursors["before"].(string)
		paging.Cursors.After, _ = cursors["after"].(string)
	}

	paging.Next, _ = block["next"].(string)
	paging.Previous, _ = block["previous"].(string)

	return paging
}

// PageIterator walks the items of a collection across page boundaries,
// fetching follow-up pages lazily.
type PageIterator struct {
	ctx   context.Context
	page  *Page
	index int
	err   error
}

// NewPageIterator creates an iterator positioned at the first item of page.
func NewPageIterator(ctx context.Context, page *Page) *PageIterator {
	return &PageIterator{ctx: ctx, page: page}
}

// HasNext reports whether another item is available without forcing a fetch
// of the following page.
func (it *PageIterator) HasNext() bool {
	if it.err != nil {
		return false
	}

	if it.index < it.page.Len() {
		return true
	}

	return it.page.HasNext()
}

// Next returns the next item, fetching the following page when the current
// one is exhausted.
func (it *PageIterator) Next() (interface{}, error) {
	if it.err != nil {
		return nil, it.err
	}

	for it.index >= it.page.Len() {
		if !it.page.HasNext() {
			it.err = ErrNoSuchPage

			return nil, it.err
		}

		next, err := it.page.Next(it.ctx)
		if err != nil {
			it.err = err

			return nil, err
		}

		it.page = next
		it.index = 0
	}

	item := it.page.items[it.index]
	it.index++

	return item, nil
}

// FetchAllPages collects every item reachable forward from page. maxPages
// bounds the walk; zero applies a default cap so a cyclic or unbounded
// collection cannot fetch forever.
func FetchAllPages(ctx context.Context, page *Page, maxPages int) ([]interface{}, error) {
	if maxPages <= 0 {
		maxPages = constants.DefaultMaxPages
	}

	items := make([]interface{}, 0, page.Len())

	current := page
	for fetched := 1; ; fetched++ {
		items = append(items, current.items...)

		if !current.HasNext() {
			return items, nil
		}

		if fetched >= maxPages {
			return items, nil
		}

		next, err := current.Next(ctx)
		if err != nil {
			return items, err
		}

		current = next
	}
}
