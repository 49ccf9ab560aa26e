package hud

import (
	"roadhud-go/internal/models"
	"roadhud-go/internal/projection"
)

// ScreenPolyline is a projected boundary with its display intensity
type ScreenPolyline struct {
	Points []projection.Point
	Alpha  float64
}

// LeadMarker pairs a snapshot lead with its screen projection
type LeadMarker struct {
	Lead    models.LeadObject
	Point   projection.Point
	Visible bool
}

// SceneGeometry is the per-frame screen-space geometry. Owned transiently
// by the render pass; only the transform it was derived from is cached.
type SceneGeometry struct {
	LaneLines []ScreenPolyline
	RoadEdges []ScreenPolyline
	Leads     []LeadMarker // index-aligned with the snapshot leads
	Primary   int          // lockon target index, -1 when none
}

// BuildScene projects the snapshot geometry through the given transform.
// Lane lines below minLaneProb are omitted entirely, not drawn degraded.
// Road edge intensity falls off with model deviation.
func BuildScene(t *projection.FrameTransform, s *models.VehicleState, minLaneProb float64) SceneGeometry {
	scene := SceneGeometry{Primary: -1}
	if t == nil || s == nil {
		return scene
	}

	for _, ll := range s.LaneLines {
		if ll.Prob < minLaneProb {
			continue
		}
		pts := t.ProjectPolyline(ll.Points)
		if len(pts) < 2 {
			continue
		}
		alpha := ll.Prob
		if alpha > 0.7 {
			alpha = 0.7
		}
		scene.LaneLines = append(scene.LaneLines, ScreenPolyline{Points: pts, Alpha: alpha})
	}

	for _, re := range s.RoadEdges {
		alpha := 1.0 - re.Std
		if alpha <= 0 {
			continue
		}
		if alpha > 1 {
			alpha = 1
		}
		pts := t.ProjectPolyline(re.Points)
		if len(pts) < 2 {
			continue
		}
		scene.RoadEdges = append(scene.RoadEdges, ScreenPolyline{Points: pts, Alpha: alpha})
	}

	proj := t.ProjectLeads(s.Leads)
	if len(proj) > 0 {
		scene.Leads = make([]LeadMarker, len(proj))
		for i, pl := range proj {
			scene.Leads[i] = LeadMarker{Lead: s.Leads[i], Point: pl.Point, Visible: pl.Visible}
		}
	}
	scene.Primary = s.PrimaryLead()
	return scene
}
