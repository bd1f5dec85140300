// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
	"github.com/go-resty/resty/v2"

	"chain-lab/internal/pipeline/common"
)

// PublishDateLayout publish_date 元数据格式
const PublishDateLayout = "2006-01-02 15:04:05"

// YoutubeLoaderConfig YouTube 字幕加载配置
type YoutubeLoaderConfig struct {
	Client *resty.Client
	// BaseURL 默认 https://www.youtube.com
	BaseURL string
	// Languages 字幕语言优先级，默认 en
	Languages []string
	// AddVideoInfo 附加标题、作者、发布日期等元数据
	AddVideoInfo bool
}

// YoutubeLoader 加载视频字幕为单个文档，实现 eino document.Loader
type YoutubeLoader struct {
	client       *resty.Client
	baseURL      string
	languages    []string
	addVideoInfo bool
}

var _ einodoc.Loader = (*YoutubeLoader)(nil)

// NewYoutubeLoader 创建 YouTube 加载器
func NewYoutubeLoader(cfg *YoutubeLoaderConfig) *YoutubeLoader {
	if cfg == nil {
		cfg = &YoutubeLoaderConfig{}
	}
	client := cfg.Client
	if client == nil {
		client = resty.New().SetTimeout(30 * time.Second).SetRetryCount(2)
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://www.youtube.com"
	}
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &YoutubeLoader{client: client, baseURL: base, languages: langs, addVideoInfo: cfg.AddVideoInfo}
}

// VideoID 从 watch?v=、youtu.be/、/embed/、/shorts/ 形式的链接中取视频 ID
func VideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("无效的 YouTube 链接 %q: %w", raw, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case host == "youtube.com" || host == "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/v/"):
			id = strings.TrimPrefix(u.Path, "/v/")
		}
	}
	id = strings.Trim(id, "/")
	if id == "" {
		return "", fmt.Errorf("无法从 %q 中解析视频 ID", raw)
	}
	return id, nil
}

type playerResponse struct {
	VideoDetails struct {
		VideoID          string `json:"videoId"`
		Title            string `json:"title"`
		LengthSeconds    string `json:"lengthSeconds"`
		ShortDescription string `json:"shortDescription"`
		ViewCount        string `json:"viewCount"`
		Author           string `json:"author"`
		Thumbnail        struct {
			Thumbnails []struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
	Microformat struct {
		Renderer struct {
			PublishDate string `json:"publishDate"`
			UploadDate  string `json:"uploadDate"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type transcriptXML struct {
	Texts []string `xml:"text"`
}

// Load 加载 src.URI 指向视频的字幕
func (l *YoutubeLoader) Load(ctx context.Context, src einodoc.Source, opts ...einodoc.LoaderOption) ([]*schema.Document, error) {
	id, err := VideoID(src.URI)
	if err != nil {
		return nil, err
	}
	player, err := l.player(ctx, id)
	if err != nil {
		return nil, err
	}
	track, ok := pickTrack(player.Captions.Renderer.CaptionTracks, l.languages)
	if !ok {
		return nil, fmt.Errorf("视频 %s 没有可用字幕", id)
	}
	text, err := l.transcript(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{"source": id}
	if l.addVideoInfo {
		info, err := videoInfo(player)
		if err != nil {
			return nil, fmt.Errorf("视频 %s: %w", id, err)
		}
		for k, v := range info {
			meta[k] = v
		}
	}
	return []*schema.Document{{ID: id, Content: text, MetaData: meta}}, nil
}

func (l *YoutubeLoader) player(ctx context.Context, id string) (*playerResponse, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		SetHeader("Accept-Language", "en-US").
		SetQueryParam("v", id).
		Get(l.baseURL + "/watch")
	if err != nil {
		return nil, fmt.Errorf("获取视频页面失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("获取视频页面失败: HTTP %d", resp.StatusCode())
	}

	body := resp.String()
	const marker = "ytInitialPlayerResponse = "
	start := strings.Index(body, marker)
	if start < 0 {
		return nil, fmt.Errorf("视频 %s 页面中没有 player 数据", id)
	}
	var player playerResponse
	dec := json.NewDecoder(strings.NewReader(body[start+len(marker):]))
	if err := dec.Decode(&player); err != nil {
		return nil, fmt.Errorf("解析 player 数据失败: %w", err)
	}
	return &player, nil
}

func (l *YoutubeLoader) transcript(ctx context.Context, trackURL string) (string, error) {
	resp, err := l.client.R().SetContext(ctx).Get(trackURL)
	if err != nil {
		return "", fmt.Errorf("获取字幕失败: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("获取字幕失败: HTTP %d", resp.StatusCode())
	}
	var t transcriptXML
	if err := xml.Unmarshal(resp.Body(), &t); err != nil {
		return "", fmt.Errorf("解析字幕失败: %w", err)
	}
	lines := make([]string, 0, len(t.Texts))
	for _, s := range t.Texts {
		lines = append(lines, html.UnescapeString(s))
	}
	return strings.Join(lines, " "), nil
}

// pickTrack 按语言优先级选字幕：人工字幕优先于自动生成，都没有时取第一条
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range languages {
		for _, generated := range []bool{false, true} {
			for _, t := range tracks {
				if t.LanguageCode == lang && (t.Kind == "asr") == generated {
					return t, true
				}
			}
		}
	}
	return tracks[0], true
}

func videoInfo(p *playerResponse) (map[string]any, error) {
	d := p.VideoDetails
	published, err := parsePublishDate(p.Microformat.Renderer.PublishDate, p.Microformat.Renderer.UploadDate)
	if err != nil {
		return nil, err
	}
	views, _ := strconv.Atoi(d.ViewCount)
	length, _ := strconv.Atoi(d.LengthSeconds)
	thumb := ""
	if n := len(d.Thumbnail.Thumbnails); n > 0 {
		thumb = d.Thumbnail.Thumbnails[n-1].URL
	}
	return map[string]any{
		"title":         d.Title,
		"description":   d.ShortDescription,
		"view_count":    views,
		"thumbnail_url": thumb,
		"publish_date":  published.Format(PublishDateLayout),
		"length":        length,
		"author":        d.Author,
	}, nil
}

func parsePublishDate(values ...string) (time.Time, error) {
	for _, v := range values {
		if v == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("无法解析发布日期 %q", v)
	}
	return time.Time{}, fmt.Errorf("缺少发布日期")
}

// AddPublishYear 由 publish_date 推出整数 publish_year
func AddPublishYear(docs []*schema.Document) error {
	for _, d := range docs {
		raw, _ := d.MetaData["publish_date"].(string)
		t, err := time.Parse(PublishDateLayout, raw)
		if err != nil {
			return common.NewValidationError("publish_date",
				fmt.Sprintf("time data %q does not match format '%%Y-%%m-%%d %%H:%%M:%%S'", raw))
		}
		d.MetaData["publish_year"] = t.Year()
	}
	return nil
}
