package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/export"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
)

const helpText = `commands:
  gen <seed> [width height]  generate a layout and print it
  stats                      describe the last layout
  help                       show this text
  quit                       close the connection`

// session is one client's command loop.
type session struct {
	s      *Server
	client Client
	ip     string
	last   *dungeon.Layout
	cached bool
}

// handleClient runs the command loop until the client quits, the
// connection drops or the server shuts down.
func (s *Server) handleClient(client Client, ip string) {
	defer client.Close()
	if !s.track(client) {
		return
	}
	defer s.untrack(client)

	logger.Info("Client connected", "remote_addr", client.RemoteAddr())
	defer logger.Info("Client disconnected", "remote_addr", client.RemoteAddr())

	sess := &session{s: s, client: client, ip: ip}
	for {
		line, err := client.ReadLine()
		if err != nil {
			return
		}
		if done := sess.dispatch(line); done {
			return
		}
	}
}

// dispatch runs one command and reports whether the session is over.
func (sess *session) dispatch(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error
	switch strings.ToLower(fields[0]) {
	case "gen", "generate":
		err = sess.gen(fields[1:])
	case "stats":
		err = sess.client.WriteLine(sess.stats())
	case "help", "?":
		err = sess.client.WriteLine(helpText)
	case "quit", "exit":
		sess.client.WriteLine("bye")
		return true
	default:
		err = sess.client.WriteLine(fmt.Sprintf("error: unknown command %q", fields[0]))
	}
	return err != nil
}

func (sess *session) gen(args []string) error {
	seed, width, height, err := sess.parseGen(args)
	if err != nil {
		return sess.client.WriteLine("error: " + err.Error())
	}

	if ok, wait := sess.s.rateLimiter.Allow(sess.ip); !ok {
		logger.Warning("Generation refused - rate limited", "ip", sess.ip, "wait", wait)
		return sess.client.WriteLine(fmt.Sprintf("error: rate limited, retry in %s", wait.Round(time.Second)))
	}

	l, cached, err := sess.s.layout(seed, width, height)
	if err != nil {
		logger.Warning("Generation failed", "seed", seed, "width", width, "height", height, "error", err)
		return sess.client.WriteLine("error: " + err.Error())
	}
	sess.last, sess.cached = l, cached

	if err := sess.client.WriteLine(export.RenderASCII(l)); err != nil {
		return err
	}
	return sess.client.WriteLine("ok")
}

func (sess *session) parseGen(args []string) (seed int64, width, height int, err error) {
	g := sess.s.cfg.Generator
	width, height = g.Width, g.Height

	switch len(args) {
	case 1, 3:
	default:
		return 0, 0, 0, fmt.Errorf("usage: gen <seed> [width height]")
	}

	seed, err = strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad seed %q", args[0])
	}
	if len(args) == 3 {
		if width, err = strconv.Atoi(args[1]); err != nil {
			return 0, 0, 0, fmt.Errorf("bad width %q", args[1])
		}
		if height, err = strconv.Atoi(args[2]); err != nil {
			return 0, 0, 0, fmt.Errorf("bad height %q", args[2])
		}
	}

	limits := sess.s.cfg.Server
	if width < 3 || height < 3 || width > limits.MaxWidth || height > limits.MaxHeight {
		return 0, 0, 0, fmt.Errorf("size %dx%d outside 3x3..%dx%d", width, height, limits.MaxWidth, limits.MaxHeight)
	}
	return seed, width, height, nil
}

func (sess *session) stats() string {
	l := sess.last
	if l == nil {
		return "no layout generated yet"
	}
	return fmt.Sprintf("seed=%d size=%dx%d rooms=%d attempts=%d main_length=%d teleports=%d cached=%t",
		l.Seed, l.Width, l.Height, len(l.Rooms), l.Attempts, l.MainLength,
		l.CountTiles(dungeon.TileTeleport), sess.cached)
}
