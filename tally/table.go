// Package tally keeps the per-artist song counts and the song that currently
// leads each artist.
package tally

import (
	"sort"
	"sync"
)

// SongCount is the number of times a song has been recorded.
type SongCount struct {
	Song  string `json:"song"`
	Count int    `json:"count"`
}

// ArtistTally is a copy of everything the table knows about one artist.
type ArtistTally struct {
	Artist string      `json:"artist"`
	Leader string      `json:"leader"`
	Songs  []SongCount `json:"songs"`
}

// A Table holds the occurrence counts and the leader of every artist.
//
// Record is the only mutating operation. The lock exists so that readers on
// other goroutines (the monitor) observe a count and its leader together.
type Table struct {
	mu         sync.RWMutex
	counts     map[string]map[string]int
	leaders    map[string]string
	numRecords int
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{
		counts:  make(map[string]map[string]int),
		leaders: make(map[string]string),
	}
}

// Record increments the count of the song for the artist and re-evaluates the
// artist's leader. It returns the new count.
//
// The leader only changes when the recorded song's count becomes strictly
// greater than the leader's, so ties keep the song that reached the maximum
// first.
func (t *Table) Record(artist, song string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	songs, ok := t.counts[artist]
	if !ok {
		songs = make(map[string]int)
		t.counts[artist] = songs
	}

	songs[song]++
	t.numRecords++

	leader, ok := t.leaders[artist]
	if !ok || songs[song] > songs[leader] {
		t.leaders[artist] = song
	}

	return songs[song]
}

// Count returns how many times the song has been recorded for the artist.
func (t *Table) Count(artist, song string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.counts[artist][song]
}

// Leader returns the leading song of the artist. The second return value is
// false if nothing has been recorded for the artist.
func (t *Table) Leader(artist string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	song, ok := t.leaders[artist]

	return song, ok
}

// NumRecords returns the number of records applied to the table.
func (t *Table) NumRecords() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.numRecords
}

// Artists returns the names of all the artists in alphabetical order.
func (t *Table) Artists() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	artists := make([]string, 0, len(t.counts))
	for artist := range t.counts {
		artists = append(artists, artist)
	}

	sort.Strings(artists)

	return artists
}

// Songs returns the counts of the artist's songs, highest count first. Songs
// with equal counts are ordered by title.
func (t *Table) Songs(artist string) []SongCount {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.songs(artist)
}

func (t *Table) songs(artist string) []SongCount {
	songs := make([]SongCount, 0, len(t.counts[artist]))
	for song, count := range t.counts[artist] {
		songs = append(songs, SongCount{Song: song, Count: count})
	}

	sort.Slice(songs, func(i, j int) bool {
		if songs[i].Count != songs[j].Count {
			return songs[i].Count > songs[j].Count
		}

		return songs[i].Song < songs[j].Song
	})

	return songs
}

// Artist returns a copy of the tally of one artist. The second return value
// is false if nothing has been recorded for the artist.
func (t *Table) Artist(artist string) (ArtistTally, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	leader, ok := t.leaders[artist]
	if !ok {
		return ArtistTally{}, false
	}

	return ArtistTally{
		Artist: artist,
		Leader: leader,
		Songs:  t.songs(artist),
	}, true
}

// Snapshot returns a copy of the tally of every artist, ordered by artist.
func (t *Table) Snapshot() []ArtistTally {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make([]ArtistTally, 0, len(t.leaders))
	for artist, leader := range t.leaders {
		snapshot = append(snapshot, ArtistTally{
			Artist: artist,
			Leader: leader,
			Songs:  t.songs(artist),
		})
	}

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Artist < snapshot[j].Artist
	})

	return snapshot
}
