package pagination

import (
	"net/http/httptest"
	"testing"
)

func TestNormalizeDefaultsAndCaps(t *testing.T) {
	t.Parallel()

	p := Normalize(Params{})
	if p.Page != 1 || p.PerPage != DefaultPerPage {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	p = Normalize(Params{Page: 3, PerPage: 500})
	if p.PerPage != MaxPerPage {
		t.Fatalf("expected per_page capped at %d, got %d", MaxPerPage, p.PerPage)
	}
	if p.Page != 3 {
		t.Fatalf("page should be preserved, got %d", p.Page)
	}
}

func TestOffsetAndLimit(t *testing.T) {
	t.Parallel()

	p := Params{Page: 4, PerPage: 10}
	if got := p.Offset(); got != 30 {
		t.Fatalf("expected offset 30, got %d", got)
	}
	if got := p.Limit(); got != 10 {
		t.Fatalf("expected limit 10, got %d", got)
	}
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/api/v1/products?page=2&per_page=5", nil)
	p := FromRequest(r)
	if p.Page != 2 || p.PerPage != 5 {
		t.Fatalf("unexpected params: %+v", p)
	}

	r = httptest.NewRequest("GET", "/api/v1/products?page=abc", nil)
	p = FromRequest(r)
	if p.Page != 1 || p.PerPage != DefaultPerPage {
		t.Fatalf("expected defaults for bad input, got %+v", p)
	}
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	page := NewPage(Params{Page: 2, PerPage: 10}, 25)
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.Total != 25 {
		t.Fatalf("expected total 25, got %d", page.Total)
	}

	empty := NewPage(Params{}, 0)
	if empty.TotalPages != 1 {
		t.Fatalf("expected 1 page for empty result, got %d", empty.TotalPages)
	}
}
