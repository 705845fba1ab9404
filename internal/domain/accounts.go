package domain

import "time"

// BusinessManager is a registered ads-platform business with its own
// access token. All upstream calls are made with the token of the business
// manager the caller selected.
type BusinessManager struct {
	BMID        string    `json:"bm_id"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdAccount is an advertising account owned by a business manager.
type AdAccount struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status int    `json:"account_status,omitempty"`
}

// Campaign is one campaign within an ad account.
type Campaign struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Objective   string `json:"objective,omitempty"`
	CreatedTime string `json:"created_time,omitempty"`
}

// Ad is a single ad with its preview material for the dashboard's ad list.
type Ad struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	PreviewLink string `json:"preview_link,omitempty"`
	PreviewHTML string `json:"preview_html,omitempty"`
}
