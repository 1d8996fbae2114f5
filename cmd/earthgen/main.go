package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/df-mc/earthgen/server"
	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/provider"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "path to the configuration file, created if missing")
		radius     = flag.Int("radius", 4, "pregeneration radius in chunks around the origin")
		minY       = flag.Int("min-y", -64, "lowest block height to pregenerate")
		maxY       = flag.Int("max-y", 127, "highest block height to pregenerate")
		inspect    = flag.String("inspect", "", "print a summary of the chunk containing x,y,z instead of pregenerating")
	)
	flag.Parse()

	uc, err := server.ReadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: uc.LogLevel()}))

	conf, err := uc.Config(log)
	if err != nil {
		log.Error("create config: " + err.Error())
		os.Exit(1)
	}
	srv, err := conf.New()
	if err != nil {
		_ = conf.Provider.Close()
		log.Error("create server: " + err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Error(err.Error())
		}
	}()

	if *inspect != "" {
		pos, err := parsePos(*inspect)
		if err != nil {
			log.Error("inspect: " + err.Error())
			return
		}
		c, err := srv.Chunk(pos)
		if err != nil {
			log.Error("inspect: " + err.Error())
			return
		}
		printChunk(srv, pos.Align(chunk.Size), c)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	s, err := srv.Pregenerate(ctx, cube.Pos{}, *radius, *minY, *maxY)
	if err != nil {
		log.Warn("pregeneration stopped: "+err.Error(), "processed", s.Total())
	}
}

// parsePos parses a position in the form x,y,z.
func parsePos(s string) (cube.Pos, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return cube.Pos{}, fmt.Errorf("position %q must have the form x,y,z", s)
	}
	var pos cube.Pos
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return cube.Pos{}, fmt.Errorf("position %q: %w", s, err)
		}
		pos[i] = v
	}
	return pos, nil
}

// printChunk prints the checksum of c and the blocks of its centre column from the top down, collapsing
// runs of the same block.
func printChunk(srv *server.Server, origin cube.Pos, c *chunk.Chunk) {
	reg := srv.Generator().Registry()
	name := func(id uint32) string {
		if n, ok := reg.Name(id); ok {
			return n
		}
		return "unknown:" + strconv.FormatUint(uint64(id), 10)
	}
	fmt.Printf("chunk %v seed=%d checksum=%016x\n", origin, srv.Settings().Seed, provider.Checksum(c))
	if id, ok := c.Uniform(); ok {
		fmt.Printf("  uniform %s\n", name(id))
		return
	}
	const x, z = chunk.Size / 2, chunk.Size / 2
	top := chunk.Size - 1
	for y := chunk.Size - 1; y >= 0; y-- {
		if y > 0 && c.Block(x, y-1, z) == c.Block(x, top, z) {
			continue
		}
		fmt.Printf("  y %4d..%-4d %s\n", origin.Y()+top, origin.Y()+y, name(c.Block(x, top, z)))
		top = y - 1
	}
}
