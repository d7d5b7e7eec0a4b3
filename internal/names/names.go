// Package names generates festive nicknames for participants and name
// suggestions for new events.
package names

import (
	"fmt"
	"math/rand"
)

var nicknameAdjectives = []string{
	"Jolly", "Merry", "Festive", "Cheerful", "Snowy", "Frosty",
	"Sparkly", "Gleeful", "Magical", "Twinkling", "Cozy", "Warm",
	"Bright", "Happy", "Joyful", "Radiant", "Shiny", "Glittering",
	"Bouncy", "Giggly", "Peppy", "Chipper", "Perky", "Zippy",
	"Dashing", "Prancing", "Dancing", "Singing", "Whistling", "Humming",
}

var nicknameNouns = []string{
	"Snowflake", "Reindeer", "Elf", "Gingerbread", "Candy Cane",
	"Snowman", "Angel", "Star", "Bell", "Cookie", "Ornament",
	"Tinsel", "Wreath", "Stocking", "Mittens", "Scarf", "Sleigh",
	"Present", "Gift", "Ribbon", "Bow", "Penguin", "Polar Bear",
	"Hot Cocoa", "Marshmallow", "Sugarplum", "Nutcracker", "Drummer",
	"Caroler", "Shepherd", "Wise One", "Holly", "Ivy", "Pine Tree",
}

var eventThemes = []string{
	"Winter Wonderland Secret Santa",
	"North Pole Gift Exchange",
	"Merry Christmas Party",
	"Festive Holiday Celebration",
	"Cozy Winter Festival",
	"Magical Gift Swap",
	"Cheery Sleigh Ride Exchange",
}

// Nickname returns a random adjective-noun nickname like "Jolly Snowflake".
func Nickname() string {
	adj := nicknameAdjectives[rand.Intn(len(nicknameAdjectives))]
	noun := nicknameNouns[rand.Intn(len(nicknameNouns))]
	return fmt.Sprintf("%s %s", adj, noun)
}

// EventNameSuggestions returns up to count distinct event name ideas.
func EventNameSuggestions(count int) []string {
	if count > len(eventThemes) {
		count = len(eventThemes)
	}
	seen := make(map[string]bool, count)
	out := make([]string, 0, count)
	for len(out) < count {
		name := eventThemes[rand.Intn(len(eventThemes))]
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
