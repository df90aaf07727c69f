package entity

import "time"

type News struct {
	ID          string
	Title       string
	Content     string
	Author      string
	Source      string
	Image       string
	URL         string
	Category    string
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryCount is a per-category article count used by the admin stats view.
type CategoryCount struct {
	Category string
	Count    int64
}

type NewsStats struct {
	TotalNews  int64
	RecentNews int64
	Categories []CategoryCount
}
