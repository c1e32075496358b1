package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"telepathy-drawing/internal/config"
	"telepathy-drawing/internal/db"
	"telepathy-drawing/internal/game"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	feed     *wsHub
	strokes  *wsHub
	cfg      config.Config
	clockCfg game.ClockConfig
	clock    clockwork.Clock
	limiter  *rateLimiter
	words    []string
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store:    NewStore(),
		db:       conn,
		feed:     newWSHub(),
		strokes:  newWSHub(),
		cfg:      cfg,
		clockCfg: clockConfigFrom(cfg),
		clock:    clockwork.NewRealClock(),
		limiter:  newRateLimiter(cfg.ChatRatePerSecond, cfg.ChatBurst),
		words:    game.DefaultWords,
	}
}

func clockConfigFrom(cfg config.Config) game.ClockConfig {
	clockCfg := game.DefaultClockConfig()
	clockCfg.RoundDuration = secondsDuration(cfg.RoundDurationSeconds)
	clockCfg.HintInterval = secondsDuration(cfg.HintIntervalSeconds)
	clockCfg.MaxReward = cfg.MaxReward
	clockCfg.RewardDecay = cfg.RewardDecayPerInterval
	return clockCfg
}

// LoadWordLibrary swaps the built-in word list for the database library
// when one has been loaded; without a database, or with an empty library,
// the built-in list stays in effect.
func (s *Server) LoadWordLibrary() {
	if s.db == nil {
		return
	}
	words, err := db.LoadWords(s.db, "")
	if err != nil {
		log.Warn().Err(err).Msg("failed to load word library, using built-in words")
		return
	}
	if len(words) == 0 {
		return
	}
	s.words = words
	log.Info().Int("count", len(words)).Msg("word library loaded")
}

func (s *Server) pickWord() string {
	return game.PickWord(s.words)
}

func (s *Server) Handler() http.Handler {
	registerValidators()
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(s.cfg.AllowedOrigins)))

	api := router.Group("/api")
	api.POST("/rooms", s.handleCreateRoom)
	api.POST("/rooms/:room/join", s.handleJoinRoom)
	api.GET("/rooms/:room", s.handleGetRoom)
	api.POST("/rooms/:room/start", s.handleStartGame)
	api.POST("/rooms/:room/chat", s.handleChat)
	api.POST("/rooms/:room/word", s.handleAdvanceWord)
	api.POST("/rooms/:room/timeout", s.handleForceTimeout)

	router.GET("/ws/rooms/:room", s.handleFeedSocket)
	router.GET("/ws/rooms/:room/strokes", s.handleStrokeSocket)
	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type"}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}
