// Fake Platform Tool serves a local stand-in for the advertising platform API
// so the export pipeline can be exercised without real credentials.
//
// It emulates the endpoints the pipeline consumes: paginated ad listing,
// per-object creative detail, per-ad insights, batch image-hash lookup, and
// per-id video detail. All media URLs it hands out point back at itself, so
// -download runs work too.
//
// Usage:
//
//	go run ./tools/fake_platform -addr=:8099 -ads=40 -seed=1
//	META_GRAPH_URL=http://localhost:8099 META_ACCESS_TOKEN=fake \
//	  META_AD_ACCOUNT_ID=act_demo go run ./cmd/adsnap
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AstroImad/adsnap/internal/observability"
)

var (
	addr     = flag.String("addr", ":8099", "listen address")
	adCount  = flag.Int("ads", 40, "number of active ads to serve")
	pageSize = flag.Int("page-size", 25, "ads per listing page")
	seed     = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	failPct  = flag.Int("fail-pct", 0, "percent of video lookups answered with a 500")
)

type fakeAd struct {
	ad       map[string]any
	creative map[string]any
	insights map[string]any
}

type platform struct {
	ads     map[string]*fakeAd    // ad id -> ad
	byCre   map[string]*fakeAd    // creative id -> ad
	images  map[string]string     // hash -> served path
	videos  map[string]string     // video id -> served path
	order   []string              // listing order
	baseURL string
	rng     *rand.Rand
	logger  *zap.Logger
}

func main() {
	flag.Parse()

	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	p := &platform{
		ads:    map[string]*fakeAd{},
		byCre:  map[string]*fakeAd{},
		images: map[string]string{},
		videos: map[string]string{},
		rng:    rand.New(rand.NewSource(*seed)),
		logger: logger,
	}
	if strings.HasPrefix(*addr, ":") {
		p.baseURL = "http://localhost" + *addr
	} else {
		p.baseURL = "http://" + *addr
	}
	p.generate(*adCount)

	mux := http.NewServeMux()
	mux.HandleFunc("/media/", p.handleMedia)
	mux.HandleFunc("/", p.handleGraph)

	logger.Info("Fake platform listening",
		zap.String("addr", *addr),
		zap.Int("ads", *adCount),
		zap.Int64("seed", *seed))
	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

var objectives = []string{"OUTCOME_SALES", "OUTCOME_TRAFFIC", "OUTCOME_AWARENESS"}

// generate builds n ads spread over a handful of campaigns and ad sets, with
// a mix of static image, carousel, and video creatives.
func (p *platform) generate(n int) {
	for i := 0; i < n; i++ {
		adID := fmt.Sprintf("90%04d", i)
		creID := fmt.Sprintf("70%04d", i)
		campIdx := i % 4
		setIdx := i % 8

		cre := map[string]any{
			"id":    creID,
			"title": fmt.Sprintf("Headline %d", i),
			"body":  fmt.Sprintf("Body copy for ad %d", i),
		}
		switch i % 3 {
		case 0: // static image
			hash := fmt.Sprintf("hash%04d", i)
			p.images[hash] = "/media/img-" + hash + ".jpg"
			cre["image_hash"] = hash
			cre["object_story_spec"] = map[string]any{
				"link_data": map[string]any{"link": "https://example.com/p/" + adID},
			}
		case 1: // carousel
			var children []any
			for c := 0; c < 3; c++ {
				hash := fmt.Sprintf("hash%04d-%d", i, c)
				p.images[hash] = "/media/img-" + hash + ".jpg"
				children = append(children, map[string]any{"image_hash": hash})
			}
			cre["object_story_spec"] = map[string]any{
				"link_data": map[string]any{
					"link":              "https://example.com/p/" + adID,
					"child_attachments": children,
				},
			}
		case 2: // video
			vid := fmt.Sprintf("80%04d", i)
			p.videos[vid] = "/media/vid-" + vid + ".mp4"
			cre["object_story_spec"] = map[string]any{
				"video_data": map[string]any{
					"video_id": vid,
					"title":    fmt.Sprintf("Video %d", i),
				},
			}
		}

		spend := 5 + p.rng.Float64()*200
		impressions := 500 + p.rng.Intn(50000)
		clicks := p.rng.Intn(impressions / 100)
		ins := map[string]any{
			"spend":       strconv.FormatFloat(spend, 'f', 2, 64),
			"impressions": strconv.Itoa(impressions),
			"clicks":      strconv.Itoa(clicks),
			"ctr":         strconv.FormatFloat(float64(clicks)/float64(impressions)*100, 'f', 4, 64),
			"actions": []any{
				map[string]any{"action_type": "purchase", "value": strconv.Itoa(p.rng.Intn(20))},
			},
			"purchase_roas": []any{
				map[string]any{"action_type": "omni_purchase", "value": strconv.FormatFloat(p.rng.Float64()*8, 'f', 2, 64)},
			},
		}

		fa := &fakeAd{
			creative: cre,
			insights: ins,
			ad: map[string]any{
				"id":               adID,
				"name":             fmt.Sprintf("Ad %d", i),
				"status":           "ACTIVE",
				"effective_status": "ACTIVE",
				"campaign": map[string]any{
					"id":        fmt.Sprintf("10%02d", campIdx),
					"name":      fmt.Sprintf("Campaign %d", campIdx),
					"objective": objectives[campIdx%len(objectives)],
				},
				"adset": map[string]any{
					"id":           fmt.Sprintf("20%02d", setIdx),
					"name":         fmt.Sprintf("Ad Set %d", setIdx),
					"status":       "ACTIVE",
					"daily_budget": strconv.Itoa(1000 * (setIdx + 1)),
				},
				"creative": map[string]any{"id": creID},
			},
		}
		p.ads[adID] = fa
		p.byCre[creID] = fa
		p.order = append(p.order, adID)
	}
}

// handleGraph dispatches /{version}/... requests the way the real API routes
// them: account listing, adimages batch lookup, per-ad insights, then plain
// object detail by id.
func (p *platform) handleGraph(w http.ResponseWriter, r *http.Request) {
	segs := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segs) < 2 {
		http.NotFound(w, r)
		return
	}
	// segs[0] is the version tag; routing ignores it.
	switch {
	case len(segs) == 3 && segs[2] == "ads":
		p.listAds(w, r)
	case len(segs) == 3 && segs[2] == "adimages":
		p.lookupImages(w, r)
	case len(segs) == 3 && segs[2] == "insights":
		p.getInsights(w, r, segs[1])
	case len(segs) == 2:
		p.getObject(w, r, segs[1])
	default:
		http.NotFound(w, r)
	}
}

func (p *platform) listAds(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if after := r.URL.Query().Get("after"); after != "" {
		offset, _ = strconv.Atoi(after)
	}
	end := offset + *pageSize
	if end > len(p.order) {
		end = len(p.order)
	}

	var data []map[string]any
	for _, id := range p.order[offset:end] {
		data = append(data, p.ads[id].ad)
	}
	resp := map[string]any{"data": data}
	if end < len(p.order) {
		next := *r.URL
		q := next.Query()
		q.Set("after", strconv.Itoa(end))
		next.RawQuery = q.Encode()
		resp["paging"] = map[string]any{"next": p.baseURL + next.String()}
	}
	writeJSON(w, resp)
}

func (p *platform) lookupImages(w http.ResponseWriter, r *http.Request) {
	var hashes []string
	if err := json.Unmarshal([]byte(r.URL.Query().Get("hashes")), &hashes); err != nil {
		platformError(w, http.StatusBadRequest, 100, "invalid hashes parameter")
		return
	}
	var data []map[string]any
	for _, h := range hashes {
		if path, ok := p.images[h]; ok {
			data = append(data, map[string]any{"hash": h, "url": p.baseURL + path})
		}
	}
	writeJSON(w, map[string]any{"data": data})
}

func (p *platform) getInsights(w http.ResponseWriter, r *http.Request, adID string) {
	fa, ok := p.ads[adID]
	if !ok {
		platformError(w, http.StatusNotFound, 100, "unknown ad "+adID)
		return
	}
	writeJSON(w, map[string]any{"data": []any{fa.insights}})
}

func (p *platform) getObject(w http.ResponseWriter, r *http.Request, id string) {
	if fa, ok := p.byCre[id]; ok {
		writeJSON(w, fa.creative)
		return
	}
	if path, ok := p.videos[id]; ok {
		if *failPct > 0 && p.rng.Intn(100) < *failPct {
			platformError(w, http.StatusInternalServerError, 1, "transient platform error")
			return
		}
		writeJSON(w, map[string]any{"id": id, "source": p.baseURL + path})
		return
	}
	platformError(w, http.StatusNotFound, 100, "unknown object "+id)
}

func (p *platform) handleMedia(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, ".mp4") {
		w.Header().Set("Content-Type", "video/mp4")
	} else {
		w.Header().Set("Content-Type", "image/jpeg")
	}
	// Deterministic placeholder bytes; enough for the mirror to exercise
	// naming and skip-if-exists behavior.
	fmt.Fprintf(w, "fake-media:%s", r.URL.Path)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func platformError(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "OAuthException",
			"code":    code,
		},
	})
}
