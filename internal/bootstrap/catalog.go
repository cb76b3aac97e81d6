package bootstrap

import "github.com/iliyamo/moviego/internal/model"

// Catalog is the fixed set of movies seeded into an empty database.
var Catalog = []model.Movie{
	{
		Title:       "Avengers: Endgame",
		Genre:       "Action, Sci-Fi",
		DurationMin: 181,
		Rating:      8.4,
		Synopsis:    "After the devastating events of Avengers: Infinity War, the universe is in ruins. With the help of remaining allies, the Avengers assemble once more to reverse Thanos' actions and restore balance to the universe.",
		PosterURL:   "https://image.tmdb.org/t/p/w500/or06FN3Dka5tukK1e9sl16pB3iy.jpg",
		ReleaseDate: "2019-04-26",
		Language:    "English",
		Director:    "Anthony Russo, Joe Russo",
		Cast:        "Robert Downey Jr., Chris Evans, Mark Ruffalo",
		IsActive:    true,
	},
	{
		Title:       "The Shawshank Redemption",
		Genre:       "Drama",
		DurationMin: 142,
		Rating:      9.3,
		Synopsis:    "Two imprisoned men bond over a number of years, finding solace and eventual redemption through acts of common decency.",
		PosterURL:   "https://image.tmdb.org/t/p/w500/q6y0Go1tsGEsmtFryDOJo3dEmqu.jpg",
		ReleaseDate: "1994-09-23",
		Language:    "English",
		Director:    "Frank Darabont",
		Cast:        "Tim Robbins, Morgan Freeman",
		IsActive:    true,
	},
	{
		Title:       "Inception",
		Genre:       "Action, Sci-Fi, Thriller",
		DurationMin: 148,
		Rating:      8.8,
		Synopsis:    "A thief who steals corporate secrets through the use of dream-sharing technology is given the inverse task of planting an idea into the mind of a C.E.O.",
		PosterURL:   "https://image.tmdb.org/t/p/w500/9gk7adHYeDvHkCSEqAvQNLV5Uge.jpg",
		ReleaseDate: "2010-07-16",
		Language:    "English",
		Director:    "Christopher Nolan",
		Cast:        "Leonardo DiCaprio, Joseph Gordon-Levitt, Ellen Page",
		IsActive:    true,
	},
	{
		Title:       "The Dark Knight",
		Genre:       "Action, Crime, Drama",
		DurationMin: 152,
		Rating:      9.0,
		Synopsis:    "When the menace known as the Joker wreaks havoc and chaos on the people of Gotham, Batman must accept one of the greatest psychological and physical tests of his ability to fight injustice.",
		PosterURL:   "https://image.tmdb.org/t/p/w500/qJ2tW6WMUDux911r6m7haRef0WH.jpg",
		ReleaseDate: "2008-07-18",
		Language:    "English",
		Director:    "Christopher Nolan",
		Cast:        "Christian Bale, Heath Ledger, Aaron Eckhart",
		IsActive:    true,
	},
	{
		Title:       "Interstellar",
		Genre:       "Adventure, Drama, Sci-Fi",
		DurationMin: 169,
		Rating:      8.6,
		Synopsis:    "A team of explorers travel through a wormhole in space in an attempt to ensure humanity's survival.",
		PosterURL:   "https://image.tmdb.org/t/p/w500/gEU2QniE6E77NI6lCU6MxlNBvIx.jpg",
		ReleaseDate: "2014-11-07",
		Language:    "English",
		Director:    "Christopher Nolan",
		Cast:        "Matthew McConaughey, Anne Hathaway, Jessica Chastain",
		IsActive:    true,
	},
}
