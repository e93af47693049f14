package database

import "quizhub/pkg/types"

// seedQuestions is the starter inventory inserted into an empty store.
var seedQuestions = []types.Question{
	{Text: "What is the capital of France?", Options: [4]string{"Lyon", "Paris", "Marseille", "Toulouse"}, Correct: 2},
	{Text: "What is 7 x 8?", Options: [4]string{"54", "58", "56", "52"}, Correct: 3},
	{Text: "Who painted the Mona Lisa?", Options: [4]string{"Picasso", "Van Gogh", "Michelangelo", "Leonardo da Vinci"}, Correct: 4},
	{Text: "In which year did humans first walk on the Moon?", Options: [4]string{"1965", "1969", "1972", "1959"}, Correct: 2},
	{Text: "What is the largest ocean on Earth?", Options: [4]string{"Atlantic", "Indian", "Arctic", "Pacific"}, Correct: 4},
	{Text: "Which planet is closest to the Sun?", Options: [4]string{"Venus", "Mercury", "Mars", "Earth"}, Correct: 2},
	{Text: "How many players are on a football team?", Options: [4]string{"9", "10", "11", "12"}, Correct: 3},
	{Text: "Which animal is the symbol of the Lacoste brand?", Options: [4]string{"Crocodile", "Tiger", "Lion", "Snake"}, Correct: 1},
	{Text: "In which country is the Leaning Tower of Pisa?", Options: [4]string{"Spain", "France", "Italy", "Greece"}, Correct: 3},
	{Text: "What is the currency of Japan?", Options: [4]string{"Yuan", "Won", "Yen", "Ringgit"}, Correct: 3},
	{Text: "Who wrote Les Miserables?", Options: [4]string{"Emile Zola", "Victor Hugo", "Balzac", "Flaubert"}, Correct: 2},
	{Text: "What is the longest river in the world?", Options: [4]string{"Amazon", "Nile", "Yangtze", "Mississippi"}, Correct: 2},
	{Text: "How many continents are there on Earth?", Options: [4]string{"5", "6", "7", "8"}, Correct: 3},
	{Text: "Which chemical element has the symbol O?", Options: [4]string{"Gold", "Oxygen", "Osmium", "Oganesson"}, Correct: 2},
	{Text: "In which year did the First World War begin?", Options: [4]string{"1912", "1914", "1916", "1918"}, Correct: 2},
}
