// Package settings holds the locale-scoped general site settings served to the storefront.
package settings

// General is the general site configuration for one locale.
type General struct {
	SiteName    string       `json:"site_name,omitempty"`
	Copyright   string       `json:"copyright,omitempty"`
	MenuItems   []MenuItem   `json:"menu_items,omitempty"`
	Contact     ContactInfo  `json:"contact"`
	SocialLinks []SocialLink `json:"social_links,omitempty"`
}

type MenuItem struct {
	ID       int64      `json:"id,omitempty"`
	Title    string     `json:"title"`
	URL      string     `json:"url"`
	Children []MenuItem `json:"children,omitempty"`
}

type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}
