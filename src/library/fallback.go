package library

import (
	"time"
)

// FallbackAlbums is the catalog that is used when none could be loaded.
func FallbackAlbums() []Album {
	return []Album{
		{
			ID:    "radiohead_ok_computer",
			Title: "OK Computer",
			Year:  1997,
			Cover: "https://placehold.co/300x300/ff6b35/ffffff?text=OK+Computer",
			Tracks: []Track{
				{
					URI:       "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
					Title:     "Airbag",
					Duration:  268 * time.Second,
					LyricsURI: "lrc/01_airbag.lrc",
				},
				{
					URI:       "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3",
					Title:     "Paranoid Android",
					Duration:  387 * time.Second,
					LyricsURI: "lrc/02_paranoid_android.lrc",
				},
			},
		},
	}
}
