package model

import "encoding/json"

// SubscriptionsResponse mirrors the payload returned by the HyP3 subscriptions endpoint.
type SubscriptionsResponse struct {
	Subscriptions []Subscription `json:"subscriptions"`
}

// Subscription represents a processing subscription registered with HyP3.
type Subscription struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ProcessID int    `json:"process_id"`
	Platform  string `json:"platform"`
	Enabled   bool   `json:"enabled"`
}

// ProductsResponse mirrors one page of the HyP3 products endpoint.
type ProductsResponse struct {
	Products []Product `json:"products"`
}

// Product represents a finished processing product available for download.
type Product struct {
	ID           int                    `json:"id"`
	SubID        int                    `json:"sub_id"`
	Name         string                 `json:"name"`
	URL          string                 `json:"url"`
	BrowseURL    string                 `json:"browse_url"`
	SizeMB       float64                `json:"size"`
	ProcessID    int                    `json:"process_id"`
	CreationDate string                 `json:"creation_date"`
	MD5Sum       string                 `json:"md5sum"`
	Metadata     map[string]interface{} `json:"-"`
	Files        []File                 `json:"files"`
}

// File describes a downloadable file associated with a product.
type File struct {
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	Checksum     string `json:"checksum"`
	ChecksumType string `json:"checksumType"`
	Name         string `json:"name"`
}

// UnmarshalJSON ensures the Files slice and metadata are initialised.
func (p *Product) UnmarshalJSON(data []byte) error {
	type alias Product
	var tmp alias
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*p = Product(tmp)
	if p.Metadata == nil {
		var meta map[string]interface{}
		if err := json.Unmarshal(data, &meta); err == nil {
			p.Metadata = meta
		} else {
			p.Metadata = map[string]interface{}{}
		}
	}
	if p.Files == nil {
		p.Files = []File{}
	}
	if len(p.Files) == 0 && p.URL != "" {
		size := int64(p.SizeMB * 1024 * 1024)
		checksumType := ""
		if p.MD5Sum != "" {
			checksumType = "md5"
		}
		p.Files = append(p.Files, File{
			URL:          p.URL,
			Name:         p.Name,
			Size:         size,
			Checksum:     p.MD5Sum,
			ChecksumType: checksumType,
		})
	}
	return nil
}
