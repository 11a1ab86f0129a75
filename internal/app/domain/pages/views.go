package pages

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
	layout "github.com/FACorreiaa/go-tripboard/internal/app/pages"
)

var providerTitle = cases.Title(language.English)

func LandingView(page LandingPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := layout.NewHTML(w)
		h.Raw(`<section class="hero">
  <h1>Plan every day of your next trip</h1>
  <p>Pick a country, lay out your days and keep track of what it all costs.</p>
`)
		if page.AuthRequired {
			h.Raw(`  <p class="notice">Please sign in to continue.</p>` + "\n")
		}
		if page.OAuthError != "" {
			h.Raw(`  <p class="error">Sign-in failed: `)
			h.Text(page.OAuthError)
			h.Raw("</p>\n")
		}
		if page.SignedIn {
			h.Raw(`  <p><a class="button" href="/my-itineraries">Get started</a></p>` + "\n")
		} else {
			h.Raw(`  <p class="signin">` + "\n")
			for _, idp := range page.Providers {
				h.Raw(`    <a class="button" href="`)
				h.URL("/auth/signin/" + idp)
				h.Raw(`">Continue with `)
				h.Text(providerTitle.String(idp))
				h.Raw("</a>\n")
			}
			h.Raw("  </p>\n")
		}
		h.Raw("</section>")
		return h.Err()
	})
}

func VerifyEmailView() templ.Component {
	return templ.Raw(`<section class="card">
  <h1>Confirm your email</h1>
  <p>We sent you a confirmation link. Open it, then sign in again to start planning.</p>
  <p><a href="/">Back to the start page</a></p>
</section>`)
}

func SearchView() templ.Component {
	return templ.Raw(`<h1>Search places</h1>
<form class="card" data-search>
  <label>City <input name="q" required placeholder="Lisbon"></label>
  <label>Interest
    <select name="i">
      <option value="">Anything</option>
      <option value="travel">Travel</option>
      <option value="food">Food</option>
      <option value="party">Party</option>
      <option value="adventure">Adventure</option>
    </select>
  </label>
  <button type="submit">Search</button>
</form>
<p class="error" data-search-error></p>
<ul class="results" data-search-results></ul>`)
}

func MyItinerariesView(page MyItinerariesPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := layout.NewHTML(w)
		h.Raw("<h1>My itineraries</h1>\n")
		switch {
		case page.Error != "":
			h.Raw(`<p class="error">Failed to load: `)
			h.Text(page.Error)
			h.Raw("</p>\n")
		case len(page.Countries) > 0:
			h.Raw(`<ul class="countries">` + "\n")
			for _, row := range page.Countries {
				h.Raw(`  <li><a href="`)
				h.URL("/country/" + strings.ToLower(row.ISO2))
				h.Raw(`">`)
				h.Text(row.Name)
				h.Raw(`</a> <span class="count">`)
				h.Text(strconv.Itoa(row.Count))
				h.Raw("</span></li>\n")
			}
			h.Raw("</ul>\n")
		default:
			h.Raw(`<p class="empty">No itineraries yet. Pick a country to plan your first trip.</p>` + "\n")
		}
		h.Raw(`<form class="card" data-country-picker>
  <label>Country code <input name="iso2" maxlength="2" required placeholder="FR"></label>
  <button type="submit">Open</button>
</form>`)
		return h.Err()
	})
}

func CountryView(page CountryPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := layout.NewHTML(w)
		h.Raw(`<h1 class="country-heading">`)
		h.Text(page.Name)
		h.Raw("</h1>\n")
		if page.Error != "" {
			h.Raw(`<p class="error">Failed to load: `)
			h.Text(page.Error)
			h.Raw("</p>")
			return h.Err()
		}

		h.Raw(`<details class="card">
  <summary>Add itinerary</summary>
  <form data-create-itinerary data-iso2="`)
		h.Text(page.ISO2)
		h.Raw(`">
    <label>Title <input name="title" required></label>
    <label>Start <input name="start_date" type="date" required></label>
    <label>End <input name="end_date" type="date" required></label>
    <label>Notes <textarea name="notes"></textarea></label>
    <button type="submit">Create</button>
    <p class="error" data-error></p>
  </form>
</details>
`)
		if len(page.Trips) == 0 {
			h.Raw(`<div class="card empty">
  <p>You don’t have any itineraries for <strong>`)
			h.Text(page.Name)
			h.Raw(`</strong> yet.</p>
</div>`)
			return h.Err()
		}

		h.Raw(`<ul class="trips">` + "\n")
		for _, trip := range page.Trips {
			tripCard(h, trip)
		}
		h.Raw("</ul>")
		return h.Err()
	})
}

func tripCard(h *layout.HTML, trip models.Itinerary) {
	h.Raw(`  <li class="card" data-itinerary="`)
	h.Text(trip.ID.String())
	h.Raw(`">
    <h2>`)
	h.Text(trip.Title)
	h.Raw(`</h2>
    <p class="dates">`)
	h.Text(trip.StartDate + " to " + trip.EndDate)
	h.Raw("</p>\n")
	if trip.Notes != nil && *trip.Notes != "" {
		h.Raw(`    <p class="notes">`)
		h.Text(*trip.Notes)
		h.Raw("</p>\n")
	}
	h.Raw(`    <button type="button" data-open-timeline>Timeline</button>
    <button type="button" data-delete-itinerary>Delete</button>
    <div class="timeline" data-timeline hidden></div>
  </li>
`)
}
