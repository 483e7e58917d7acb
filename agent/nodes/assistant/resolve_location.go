package assistantnode

import (
	"context"
	"errors"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	"github.com/rs/zerolog/log"
)

// ResolveLocation geocodes a place name the classifier extracted and
// saves it on the conversation. Geocoding failures leave the location
// unset; the exploration workflow then asks for it.
func ResolveLocation(ctx context.Context, in *GraphState, geocoder contractx.Geocoder) (*GraphState, error) {
	intent, ok := in.Intent.(contractx.ExploreIntent)
	if !ok || intent.LocationName == "" || geocoder == nil {
		return in, nil
	}

	loc, err := geocoder.Resolve(ctx, intent.LocationName)
	if err != nil {
		evt := log.Warn()
		if errors.Is(err, contractx.ErrNotFound) {
			evt = log.Debug()
		}
		evt.Err(err).
			Str("session_id", in.SessionID).
			Str("place", intent.LocationName).
			Msg("geocoding failed, location left unset")
		return in, nil
	}

	in.Conv.SetLocation(loc)
	return in, nil
}
