package response

import "github.com/Guyuepp/travel-feed/domain"

type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type Image struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Name string `json:"name"`
}

type Feed struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	TravelDate  string `json:"travel_date"`
	AirportName string `json:"airport_name"`
	WriterID    string `json:"writer_id"`
	Views       int64  `json:"views"`
	Likes       int64  `json:"likes"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type FeedDetail struct {
	Feed
	Writer   *User     `json:"writer,omitempty"`
	Location *Location `json:"location,omitempty"`
	Images   []Image   `json:"images"`
	Comments []Comment `json:"comments"`
}

// NewFeedFromDomain: Domain -> Response
func NewFeedFromDomain(f *domain.Feed) Feed {
	return Feed{
		ID:          f.ID,
		Title:       f.Title,
		Content:     f.Content,
		TravelDate:  f.TravelDate,
		AirportName: f.AirportName,
		WriterID:    f.WriterID,
		Views:       f.ViewCount,
		Likes:       f.LikeCount,
		CreatedAt:   f.CreatedAt.Format(DateTimeFormat),
		UpdatedAt:   f.UpdatedAt.Format(DateTimeFormat),
	}
}

func NewFeedDetailFromDomain(d *domain.FeedDetail) FeedDetail {
	res := FeedDetail{
		Feed:     NewFeedFromDomain(&d.Feed),
		Writer:   NewUserFromDomain(&d.Writer),
		Images:   make([]Image, len(d.Images)),
		Comments: make([]Comment, len(d.Comments)),
	}
	if d.Location.ID != "" {
		res.Location = &Location{
			Address: d.Location.Address,
			Lat:     d.Location.Lat,
			Lng:     d.Location.Lng,
		}
	}
	for i, img := range d.Images {
		res.Images[i] = Image{ID: img.ID, Path: img.Path, Name: img.Name}
	}
	for i := range d.Comments {
		res.Comments[i] = NewCommentFromDomain(&d.Comments[i])
	}
	return res
}
