package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/vaguilera/torrentmeta/selection"
	"github.com/vaguilera/torrentmeta/torrentfile"
	"github.com/vaguilera/torrentmeta/tracker"
)

func printHelp() {
	fmt.Printf("torrentmeta V1.0\nUsage:\n\ttorrentmeta [flags] <torrentfile>\n")
	flag.PrintDefaults()
}

type config struct {
	port     uint
	numWant  int
	rows     int
	announce bool
	allTiers bool
	timeout  time.Duration
	retries  int
}

func main() {

	log.SetFlags(0)

	var cfg config
	flag.UintVar(&cfg.port, "port", 6881, "Port reported to trackers")
	flag.IntVar(&cfg.numWant, "numwant", -1, "Peers requested per announce (-1 lets the tracker decide)")
	flag.IntVar(&cfg.rows, "rows", 10, "Files listed")
	flag.BoolVar(&cfg.announce, "announce", false, "Announce to the UDP trackers")
	flag.BoolVar(&cfg.allTiers, "all-tiers", false, "Use every URL of each announce-list tier")
	flag.DurationVar(&cfg.timeout, "timeout", 15*time.Second, "First UDP response timeout")
	flag.IntVar(&cfg.retries, "retries", 8, "UDP retransmissions per request")
	flag.Usage = printHelp
	flag.Parse()
	args := flag.Args()

	if len(args) != 1 || cfg.port > 0xffff {
		printHelp()
		os.Exit(2)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("Error while opening file: %s", err)
	}

	meta, err := torrentfile.Decode(data)
	if err != nil {
		log.Fatalf("Error processing torrent file: %s", err)
	}
	printInfo(meta, cfg.rows)

	infoHash := torrentfile.DeriveInfoHash(meta.Info)
	log.Printf("InfoHash: %s\n", infoHash)
	if raw, err := torrentfile.RawInfoHash(data); err != nil {
		log.Printf("Raw info hash unavailable: %s\n", err)
	} else if raw != infoHash {
		log.Printf("Warning: info dictionary is not canonical, file hash is %s\n", raw)
	}

	policy := tracker.FirstPerTier
	if cfg.allTiers {
		policy = tracker.AllPerTier
	}
	registry := tracker.Build(meta.Announce, meta.AnnounceList, policy)
	for _, skipped := range registry.Skipped {
		log.Printf("Skipping tracker: %s\n", skipped)
	}

	peerID := tracker.NewPeerID()
	for _, t := range registry.Trackers {
		log.Printf("Tracker [%s] %s\n", t.Protocol, t.Raw)
		if t.Protocol != tracker.HTTP {
			continue
		}
		u, err := tracker.HTTPAnnounceURL(t, tracker.HTTPParams{
			InfoHash: infoHash,
			PeerID:   peerID,
			Port:     uint16(cfg.port),
			Left:     meta.Info.TotalLength(),
			Event:    tracker.EventStarted,
			NumWant:  int32(cfg.numWant),
			Key:      tracker.RandomUint32(),
		})
		if err == nil {
			log.Printf("\t%s\n", u)
		}
	}

	if !cfg.announce {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, t := range registry.UDP() {
		peers, err := announce(ctx, t, cfg, infoHash, peerID, meta.Info.TotalLength())
		if err != nil {
			log.Printf("%s ...KO (%s)\n", t.Raw, err)
			continue
		}
		for _, p := range peers {
			log.Printf("\tpeer %s:%d\n", p.IP, p.Port)
		}
		break
	}
}

func announce(ctx context.Context, t tracker.Tracker, cfg config, infoHash torrentfile.InfoHash, peerID tracker.PeerID, left int64) ([]tracker.Peer, error) {
	ut, err := tracker.NewUDPTracker(t)
	if err != nil {
		return nil, err
	}
	defer ut.Close()
	ut.Timeout = cfg.timeout
	ut.Retries = cfg.retries

	b := tracker.NewAnnounceBuilder().
		InfoHash(infoHash).
		PeerID(peerID).
		Downloaded(0).
		Left(left).
		Uploaded(0).
		Event(tracker.EventStarted).
		IP(tracker.IPInferred).
		Key(tracker.RandomUint32()).
		NumWant(int32(cfg.numWant)).
		Port(uint16(cfg.port))

	resp, err := ut.Announce(ctx, b)
	if err != nil {
		return nil, err
	}
	log.Printf("%s: %d seeders, %d leechers, next announce in %s\n", t.Raw, resp.Seeders, resp.Leechers, resp.Interval)
	return resp.Peers, nil
}

func printInfo(meta *torrentfile.Metadata, rows int) {
	log.Printf("Announce: %s\n", meta.Announce)
	if meta.AnnounceList != nil {
		log.Printf("Trackers: %v\n", meta.AnnounceList)
	}
	if meta.CreationDate != nil {
		log.Printf("Creation Date: %s\n", meta.CreationDate)
	}
	if meta.Comment != nil {
		log.Printf("Comment: %s\n", *meta.Comment)
	}
	if meta.CreatedBy != nil {
		log.Printf("Created By: %s\n", *meta.CreatedBy)
	}
	if meta.Encoding != nil {
		log.Printf("Encoding: %s\n", *meta.Encoding)
	}
	log.Printf("Pieces: %d x %d bytes\n", meta.Info.NumPieces(), meta.Info.PieceLength)

	files := selection.New(meta.Info, rows)
	log.Printf("Name: %s\n", files.Root)
	for _, row := range files.Visible() {
		log.Printf("\t%-60s %d\n", row.Name(), row.Length)
	}
	if hidden := len(files.Rows) - len(files.Visible()); hidden > 0 {
		log.Printf("\t... %d more\n", hidden)
	}
	log.Printf("Files total length: %d\n\n", files.SelectedLength())
}
