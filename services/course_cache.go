package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/cache"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
)

// CourseCache is a read-through cache in front of the catalog.
type CourseCache interface {
	Get(ctx context.Context, courseID uint) (*model.Course, bool)
	Set(ctx context.Context, course *model.Course)
	Invalidate(ctx context.Context, courseID uint)
}

// RedisCourseCache stores courses as JSON in Redis. Cache errors are logged and
// treated as misses.
type RedisCourseCache struct {
	redis *cache.RedisCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewRedisCourseCache(redis *cache.RedisCache, ttl time.Duration, log *logger.Logger) *RedisCourseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCourseCache{redis: redis, ttl: ttl, log: log}
}

func courseCacheKey(courseID uint) string {
	return fmt.Sprintf("catalog:course:%d", courseID)
}

func (c *RedisCourseCache) Get(ctx context.Context, courseID uint) (*model.Course, bool) {
	var course model.Course
	if err := c.redis.GetJSON(ctx, courseCacheKey(courseID), &course); err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.log.Warn("course cache read failed", "course_id", courseID, "error", err)
		}
		return nil, false
	}
	return &course, true
}

func (c *RedisCourseCache) Set(ctx context.Context, course *model.Course) {
	if err := c.redis.SetJSON(ctx, courseCacheKey(course.ID), course, c.ttl); err != nil {
		c.log.Warn("course cache write failed", "course_id", course.ID, "error", err)
	}
}

func (c *RedisCourseCache) Invalidate(ctx context.Context, courseID uint) {
	if err := c.redis.Delete(ctx, courseCacheKey(courseID)); err != nil {
		c.log.Warn("course cache invalidation failed", "course_id", courseID, "error", err)
	}
}
