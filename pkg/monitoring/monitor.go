package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 成长体系业务指标
	XPAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_xp_awarded_total",
			Help: "XP awarded to users, by source",
		},
		[]string{"source"},
	)

	LevelUps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progression_level_ups_total",
		Help: "Number of levels gained by users",
	})

	QuestsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progression_quests_completed_total",
		Help: "Number of quests completed",
	})

	QuestSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_quest_submissions_total",
			Help: "Graded quest submissions, by outcome",
		},
		[]string{"outcome"},
	)

	AchievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_achievements_unlocked_total",
			Help: "Achievements unlocked, by achievement id",
		},
		[]string{"achievement"},
	)

	SkillPointsSpent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_skill_points_spent_total",
			Help: "Skill points spent, by skill tree",
		},
		[]string{"tree"},
	)

	HintsUsed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progression_hints_used_total",
		Help: "Number of quest hints purchased",
	})

	CheckIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_check_ins_total",
			Help: "Daily check-ins, by streak outcome",
		},
		[]string{"outcome"},
	)

	QuestRatings = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progression_quest_ratings_total",
		Help: "Number of quest ratings submitted",
	})

	GraderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "progression_grader_duration_seconds",
		Help:    "Duration of code grading requests",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10},
	})

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			XPAwarded,
			LevelUps,
			QuestsCompleted,
			QuestSubmissions,
			AchievementsUnlocked,
			SkillPointsSpent,
			HintsUsed,
			CheckIns,
			QuestRatings,
			GraderDuration,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
