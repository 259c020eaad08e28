package common

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines shared key bindings across all views.
type KeyMap struct {
	Quit        key.Binding
	ForceQuit   key.Binding
	Back        key.Binding
	Up          key.Binding
	Down        key.Binding
	Top         key.Binding
	Enter       key.Binding
	Refresh     key.Binding
	LoadMore    key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Compose     key.Binding // n: inline composer
	Reply       key.Binding
	Edit        key.Binding // e: edit own post
	Delete      key.Binding
	Favourite   key.Binding
	Reblog      key.Binding
	Bookmark    key.Binding
	Profile     key.Binding // z: author profile
	OwnProfile  key.Binding
	Follow      key.Binding
	Open        key.Binding // o: expand text behind a content warning
	ToggleHints key.Binding
	New         key.Binding // a: add an item on list screens
	Rename      key.Binding
	Toggle      key.Binding // space
	Search      key.Binding
	Members     key.Binding // M: accounts on a list
	Sections    []key.Binding
}

// Section is a top-level area reachable with a number key.
type Section int

const (
	SectionTimelines Section = iota
	SectionNotifications
	SectionLists
	SectionFilters
	SectionHashtags
	SectionServer
	SectionSettings
	SectionExplore
)

var sectionNames = []string{"Timelines", "Notifications", "Lists", "Filters", "Hashtags", "Server", "Settings", "Explore"}

func (s Section) String() string {
	if int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return "Unknown"
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "load more"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "t"),
			key.WithHelp("t", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "T"),
			key.WithHelp("T", "prev tab"),
		),
		Compose: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new post"),
		),
		Reply: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "reply"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Favourite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favourite"),
		),
		Reblog: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "boost"),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "bookmark"),
		),
		Profile: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "profile"),
		),
		OwnProfile: key.NewBinding(
			key.WithKeys("Z"),
			key.WithHelp("Z", "my profile"),
		),
		Follow: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "follow"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "expand"),
		),
		ToggleHints: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "keys"),
		),
		New: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Rename: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rename"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Members: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "members"),
		),
	}
	for i, name := range sectionNames {
		n := string(rune('1' + i))
		km.Sections = append(km.Sections, key.NewBinding(
			key.WithKeys(n),
			key.WithHelp(n, name),
		))
	}
	return km
}

// SectionFor returns the section bound to msg's key.
func (km KeyMap) SectionFor(k string) (Section, bool) {
	for i, b := range km.Sections {
		for _, bk := range b.Keys() {
			if bk == k {
				return Section(i), true
			}
		}
	}
	return 0, false
}
