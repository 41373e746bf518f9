package request

import "github.com/Guyuepp/travel-feed/domain"

// UploadedFile is a blob the client already pushed to the object storage.
type UploadedFile struct {
	Key  string `json:"key" binding:"required"`
	Path string `json:"path" binding:"required"`
	Name string `json:"name"`
}

type Location struct {
	Address string  `json:"address" binding:"required"`
	Lat     float64 `json:"lat" binding:"gte=-90,lte=90"`
	Lng     float64 `json:"lng" binding:"gte=-180,lte=180"`
}

type Feed struct {
	Title       string         `json:"title" binding:"required,notblank,max=100"`
	Content     string         `json:"content" binding:"required,notblank"`
	TravelDate  string         `json:"travel_date" binding:"required"`
	AirportName string         `json:"airport_name" binding:"required"`
	Location    Location       `json:"location"`
	Images      []UploadedFile `json:"images" binding:"dive"`
}

// ToDomain: Request -> Domain
func (r *Feed) ToDomain() domain.NewFeed {
	images := make([]domain.UploadedFile, len(r.Images))
	for i, img := range r.Images {
		images[i] = domain.UploadedFile{Key: img.Key, Path: img.Path, Name: img.Name}
	}
	return domain.NewFeed{
		Title:       r.Title,
		Content:     r.Content,
		TravelDate:  r.TravelDate,
		AirportName: r.AirportName,
		Location: domain.NewLocation{
			Address: r.Location.Address,
			Lat:     r.Location.Lat,
			Lng:     r.Location.Lng,
		},
		Images: images,
	}
}
