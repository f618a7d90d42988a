package models

import "time"

type AnnouncementType string

const (
	AnnouncementSuccess AnnouncementType = "Success"
	AnnouncementNews    AnnouncementType = "News"
	AnnouncementFailure AnnouncementType = "Failure"
)

func ParseAnnouncementType(s string) (AnnouncementType, bool) {
	switch AnnouncementType(s) {
	case AnnouncementSuccess, AnnouncementNews, AnnouncementFailure:
		return AnnouncementType(s), true
	}
	return "", false
}

type Announcement struct {
	ID               string           `json:"id"`
	RobloxImageID    string           `json:"robloxImageId"`
	AnnouncementType AnnouncementType `json:"announcementType"`
	AnnouncementText string           `json:"announcementText"`
	CreatedBy        string           `json:"createdBy"`
	ModifiedBy       string           `json:"modifiedBy,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
	LastModified     *time.Time       `json:"lastModified,omitempty"`
}
