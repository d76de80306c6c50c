package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"forkgraph/core"
	"forkgraph/core/config"
	"forkgraph/miner"
	"forkgraph/net"

	"github.com/dgraph-io/badger/v4"
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

func main() {
	handleCLICommands()

	var (
		dataDir       = flag.String("data-dir", "data", "Directory for the runtime db and block log")
		p2pPort       = flag.Int("p2p-port", 4001, "P2P listen port")
		peerMultiaddr = flag.String("peer-multiaddr", "", "Multiaddr of a peer to connect to (optional)")
		pruneDepth    = flag.Uint64("prune-depth", 0, "Block index heights to keep (0 = keep all)")
	)
	flag.Parse()

	config.PruneDepth = *pruneDepth
	config.BlockLogDir = filepath.Join(*dataDir, "blocks")

	log.Printf("📗 starting forkgraphd, data-dir=%s p2p-port=%d", *dataDir, *p2pPort)

	db, err := badger.Open(badger.DefaultOptions(filepath.Join(*dataDir, "runtime")))
	if err != nil {
		log.Fatalf("failed to open runtime db: %v", err)
	}
	defer db.Close()

	runtime := core.NewState(db)
	pool := core.NewPool()
	store := core.NewStore(runtime, pool, config.BlockLogDir)

	blockIndex, err := core.OpenBlockIndex(*dataDir)
	if err != nil {
		log.Fatalf("failed to open block index: %v", err)
	}
	defer blockIndex.Close()
	store.SetBlockIndex(blockIndex)

	if err := store.ReplayBlockLog(config.BlockLogDir, time.Now().UnixMilli()); err != nil {
		log.Fatalf("failed to replay block log: %v", err)
	}
	log.Printf("📗 replayed block log, tip=%s", store.Tip())

	ctx := context.Background()
	node, err := net.NewNode(ctx, *p2pPort, store, pool)
	if err != nil {
		log.Fatalf("failed to start p2p node: %v", err)
	}
	log.Printf("📡 p2p node started, peer id %s", node.Host.ID())
	for _, addr := range node.Host.Addrs() {
		log.Printf("📡 listening on %s/p2p/%s", addr, node.Host.ID())
	}

	if *peerMultiaddr != "" {
		addr, err := ma.NewMultiaddr(*peerMultiaddr)
		if err != nil {
			log.Fatalf("invalid multiaddr: %v", err)
		}
		pi, err := peer.AddrInfoFromP2pAddr(addr)
		if err != nil {
			log.Fatalf("invalid addr info: %v", err)
		}
		if err := node.Host.Connect(ctx, *pi); err != nil {
			log.Printf("📡 failed to connect to peer: %v", err)
		} else {
			log.Printf("📡 connected to peer %s", pi.ID.String())
		}
	}

	mb := miner.NewMailbox()
	driver := miner.NewDriver(mb, store)
	scheduler := net.NewScheduler(node, driver)

	stop := make(chan struct{})
	go miner.WorkLoop(mb)
	go scheduler.Run(stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Printf("📗 shutting down...")
	close(stop)
	mb.PostStop()
}
