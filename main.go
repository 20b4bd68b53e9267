package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stapply-ai/jobmap/cluster"
	"github.com/stapply-ai/jobmap/config"
	"github.com/stapply-ai/jobmap/geocache"
	"github.com/stapply-ai/jobmap/pipeline"
	"github.com/stapply-ai/jobmap/viewport"
)

func getBoundsFromQuery(c *gin.Context) (cluster.Bounds, bool) {
	north, err := strconv.ParseFloat(c.Query("north"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid north parameter"})
		return cluster.Bounds{}, false
	}

	south, err := strconv.ParseFloat(c.Query("south"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid south parameter"})
		return cluster.Bounds{}, false
	}

	east, err := strconv.ParseFloat(c.Query("east"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid east parameter"})
		return cluster.Bounds{}, false
	}

	west, err := strconv.ParseFloat(c.Query("west"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid west parameter"})
		return cluster.Bounds{}, false
	}

	return cluster.Bounds{MinLat: south, MinLng: west, MaxLat: north, MaxLng: east}, true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[jobmap] Config error: %v", err)
	}

	var cache geocache.Cache
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := geocache.NewRedisCache(ctx, cfg.RedisURL, 30*24*time.Hour)
		cancel()
		if err != nil {
			log.Fatalf("[jobmap] Redis error: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache
		log.Println("[jobmap] Using redis geocache")
	} else {
		cache = geocache.NewMemoryCache()
		log.Println("[jobmap] REDIS_URL not set, using in-memory geocache")
	}

	p := pipeline.New(cfg, cache)
	if err := p.Refresh(context.Background()); err != nil {
		log.Fatalf("[jobmap] Initial load failed: %v", err)
	}
	if err := p.StartRefresh(); err != nil {
		log.Fatalf("[jobmap] %v", err)
	}
	defer p.StopRefresh()

	r := gin.Default()

	// Enable CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// All normalized, deduplicated records with slugs.
	r.GET("/api/jobs", func(c *gin.Context) {
		ds := p.Dataset()
		c.JSON(http.StatusOK, gin.H{
			"count":    len(ds.Records),
			"loadedAt": ds.LoadedAt,
			"jobs":     ds.Records,
		})
	})

	// Slug lookup; 404 on miss rather than an error payload.
	r.GET("/api/jobs/:company/:slug", func(c *gin.Context) {
		rec, ok := p.FindBySlug(c.Param("company"), c.Param("slug"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	// Clusters for the current viewport as GeoJSON.
	r.GET("/api/clusters", func(c *gin.Context) {
		zoom, err := strconv.Atoi(c.Query("zoom"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zoom parameter"})
			return
		}
		bounds, ok := getBoundsFromQuery(c)
		if !ok {
			return
		}

		clusters := p.Dataset().Tree.Clusters(bounds, zoom, p.ClusterOptions())
		c.JSON(http.StatusOK, cluster.ToGeoJSON(clusters))
	})

	// Summary stats for the current viewport.
	r.GET("/api/clusters/metadata", func(c *gin.Context) {
		zoom, err := strconv.Atoi(c.Query("zoom"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid zoom parameter"})
			return
		}
		bounds, ok := getBoundsFromQuery(c)
		if !ok {
			return
		}

		clusters := p.Dataset().Tree.Clusters(bounds, zoom, p.ClusterOptions())
		c.JSON(http.StatusOK, cluster.Summarize(clusters))
	})

	// Overview framing for static imagery.
	r.GET("/api/viewport", func(c *gin.Context) {
		opts := viewport.DefaultOptions()
		if w, err := strconv.Atoi(c.Query("width")); err == nil && w > 0 {
			opts.Width = w
		}
		if h, err := strconv.Atoi(c.Query("height")); err == nil && h > 0 {
			opts.Height = h
		}

		ds := p.Dataset()
		markers := make([]viewport.LatLng, len(ds.Records))
		for i, rec := range ds.Records {
			markers[i] = viewport.LatLng{Lat: rec.Lat, Lng: rec.Lng}
		}
		c.JSON(http.StatusOK, viewport.ComputeOverview(markers, opts))
	})

	// Re-read the CSV snapshot on demand.
	r.POST("/api/refresh", func(c *gin.Context) {
		if err := p.Refresh(c.Request.Context()); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Dataset refreshed",
			"count":   len(p.Dataset().Records),
		})
	})

	// List available snapshots.
	r.GET("/api/snapshots/list", func(c *gin.Context) {
		snapshots, err := p.ListSnapshots()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snapshots)
	})

	// Load a saved snapshot by ID.
	r.POST("/api/snapshots/load/:id", func(c *gin.Context) {
		info, err := p.LoadSnapshot(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "Snapshot loaded successfully",
			"snapshotInfo": info,
		})
	})

	// Create a channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("[jobmap] Starting server on :%s...", cfg.Port)
		if err := r.Run(":" + cfg.Port); err != nil {
			log.Printf("[jobmap] Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("[jobmap] Shutting down server...")

	// Save a snapshot of the current dataset before exiting.
	if info, err := p.SaveSnapshot(); err != nil {
		log.Printf("[jobmap] Failed to save snapshot on shutdown: %v", err)
	} else {
		log.Printf("[jobmap] Saved snapshot %s (%d records, %d bytes)",
			info.ID, info.NumRecords, info.FileSize)
	}

	log.Println("[jobmap] Server stopped")
}
