package web

import "github.com/Skufu/healthassistant/internal/diagnosis"

const (
	menuTitle = "Multiple Disease Prediction System"
	menuIcon  = "hospital-fill"

	ChatPage = "chatbot"
)

// Page is one entry of the navigation menu.
type Page struct {
	ID      string
	Label   string
	Icon    string
	Disease diagnosis.Disease
}

func (p Page) IsChat() bool {
	return p.ID == ChatPage
}

// Pages lists the menu in display order. The first entry is the default page.
func Pages() []Page {
	schemas := diagnosis.Schemas()
	pages := make([]Page, 0, len(schemas)+1)
	for _, s := range schemas {
		pages = append(pages, Page{ID: string(s.Disease), Label: s.MenuLabel, Icon: s.Icon, Disease: s.Disease})
	}
	return append(pages, Page{ID: ChatPage, Label: "Medical ChatBot", Icon: "robot"})
}

func DefaultPage() Page {
	return Pages()[0]
}

// Resolve selects exactly one page by id.
func Resolve(id string) (Page, bool) {
	for _, p := range Pages() {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

type navItem struct {
	Page
	Active bool
}

func navFor(active string) []navItem {
	pages := Pages()
	items := make([]navItem, 0, len(pages))
	for _, p := range pages {
		items = append(items, navItem{Page: p, Active: p.ID == active})
	}
	return items
}
