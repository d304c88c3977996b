// Package server exposes the forger's read-only status API.
package server

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/zkforge/rollup-forger/db"
	"github.com/zkforge/rollup-forger/tracker"
)

// Router builds the gin handler for the status API.
func Router(store db.DB, tr *tracker.Tracker, log *logrus.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/status", func(c *gin.Context) {
		lastBlock := uint64(0)
		if raw, err := store.Get([]byte("last_block")); err == nil && raw != nil {
			lastBlock = new(big.Int).SetBytes(raw).Uint64()
		}
		finalized := uint64(0)
		if raw, err := store.Get([]byte("finalized_block")); err == nil && raw != nil {
			finalized = new(big.Int).SetBytes(raw).Uint64()
		}
		c.JSON(http.StatusOK, gin.H{
			"last_block":      lastBlock,
			"finalized_block": finalized,
			"pending_batches": tr.Pending(),
		})
	})

	r.GET("/batch/:num", func(c *gin.Context) {
		num, err := strconv.ParseUint(c.Param("num"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch number"})
			return
		}
		raw, err := store.Get([]byte(fmt.Sprintf("forged_%d", num)))
		if err != nil {
			log.Errorf("Failed to read batch #%d: %v", num, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
			return
		}
		if raw == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch not forged"})
			return
		}
		c.Data(http.StatusOK, "application/json", raw)
	})

	return r
}

// Start serves the status API on port, blocking until the listener fails.
func Start(port string, store db.DB, tr *tracker.Tracker, log *logrus.Logger) error {
	log.Infof("Status API listening on %s", port)
	return Router(store, tr, log).Run(port)
}
