package feeds

import (
	"encoding/json"
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

type ntasFeed struct {
	Alerts []struct {
		Type      string   `xml:"type,attr"`
		Start     string   `xml:"start,attr"`
		End       string   `xml:"end,attr"`
		Href      string   `xml:"href,attr"`
		Summary   string   `xml:"summary"`
		Details   string   `xml:"details"`
		Duration  string   `xml:"duration"`
		Locations []string `xml:"locations>location"`
		Sectors   []string `xml:"sectors>sector"`
	} `xml:"alert"`
}

// parseNTAS reads the DHS National Terrorism Advisory System bulletin feed.
// An empty <alerts/> document means no bulletin is in effect.
func parseNTAS(body []byte, _ Query) ([]domain.Record, error) {
	var feed ntasFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(feed.Alerts))
	for _, a := range feed.Alerts {
		location := strings.Join(a.Locations, ", ")
		if location == "" {
			location = "United States"
		}
		rec := domain.Record{
			domain.KeyLocation: location,
			domain.KeyTime:     a.Start,
			"title":            strings.TrimSpace(a.Summary),
			"details":          strings.TrimSpace(a.Details),
			"ntas_type":        a.Type,
			"expires":          a.End,
			"duration":         strings.TrimSpace(a.Duration),
			"sectors":          a.Sectors,
			"url":              a.Href,
			"source":           "DHS NTAS",
		}
		if a.Href != "" {
			rec[domain.KeyID] = a.Href
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

type travelRSS struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
			Categories  []struct {
				Domain string `xml:"domain,attr"`
				Value  string `xml:",chardata"`
			} `xml:"category"`
		} `xml:"item"`
	} `xml:"channel"`
}

var travelLevelRe = regexp.MustCompile(`Level (\d)`)

// parseTravel reads the State Department travel advisory RSS feed. Titles
// look like "Afghanistan - Level 4: Do Not Travel".
func parseTravel(body []byte, _ Query) ([]domain.Record, error) {
	var feed travelRSS
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		country, _, _ := strings.Cut(item.Title, " - ")
		country = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(country), "Travel Advisory"))
		var code string
		for _, c := range item.Categories {
			if strings.EqualFold(c.Domain, "Country-Tag") {
				code = strings.ToUpper(strings.TrimSpace(c.Value))
			}
		}
		rec := domain.Record{
			domain.KeyID:       item.Link,
			domain.KeyLocation: country,
			domain.KeyTime:     item.PubDate,
			"title":            strings.TrimSpace(item.Title),
			"country":          country,
			"country_code":     code,
			"url":              item.Link,
			"source":           "State Department",
		}
		if m := travelLevelRe.FindStringSubmatch(item.Title); m != nil {
			lvl, _ := strconv.Atoi(m[1])
			rec["travel_level"] = float64(lvl)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

type kevCatalog struct {
	Vulnerabilities []struct {
		CveID                      string `json:"cveID"`
		VendorProject              string `json:"vendorProject"`
		Product                    string `json:"product"`
		VulnerabilityName          string `json:"vulnerabilityName"`
		DateAdded                  string `json:"dateAdded"`
		ShortDescription           string `json:"shortDescription"`
		RequiredAction             string `json:"requiredAction"`
		DueDate                    string `json:"dueDate"`
		KnownRansomwareCampaignUse string `json:"knownRansomwareCampaignUse"`
	} `json:"vulnerabilities"`
}

// parseCISA reads the Known Exploited Vulnerabilities catalog.
func parseCISA(body []byte, _ Query) ([]domain.Record, error) {
	var cat kevCatalog
	if err := json.Unmarshal(body, &cat); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(cat.Vulnerabilities))
	for _, v := range cat.Vulnerabilities {
		recs = append(recs, domain.Record{
			domain.KeyID:       v.CveID,
			domain.KeyLocation: joinNonEmpty(" ", v.VendorProject, v.Product),
			domain.KeyTime:     v.DateAdded,
			"title":            v.CveID + ": " + v.VulnerabilityName,
			"cve":              v.CveID,
			"vendor":           v.VendorProject,
			"product":          v.Product,
			"description":      v.ShortDescription,
			"required_action":  v.RequiredAction,
			"due_date":         v.DueDate,
			"ransomware":       strings.ToLower(v.KnownRansomwareCampaignUse),
			"source":           "CISA KEV",
		})
	}
	return recs, nil
}
