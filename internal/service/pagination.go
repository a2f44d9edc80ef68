package service

import "gorm.io/gorm"

// PageRequest selects one page of a list query. Page is 1-based.
type PageRequest struct {
	Limit int
	Page  int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// paginate counts the rows matched by query and applies limit/offset.
func paginate(query *gorm.DB, page PageRequest) (*gorm.DB, int64, error) {
	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if page.Limit > 0 {
		query = query.Limit(page.Limit).Offset(page.Offset())
	}
	return query, count, nil
}
