package game

import "math/rand/v2"

// DefaultWords is the built-in word list: simple nouns that anyone can
// draw, grouped roughly by theme. A custom list loaded into the word
// library table takes precedence when present.
var DefaultWords = []string{
	// animals
	"고양이", "강아지", "병아리", "돼지", "소", "오리", "호랑이", "사자", "토끼", "곰",
	"기린", "코끼리", "원숭이", "뱀", "개구리", "물고기", "상어", "고래", "펭귄", "판다",
	// food
	"사과", "바나나", "포도", "수박", "딸기", "햄버거", "피자", "치킨", "아이스크림", "케이크",
	"식빵", "우유", "계란", "라면", "김밥", "떡볶이", "사탕", "초콜릿", "도넛", "옥수수",
	// household objects
	"우산", "안경", "모자", "양말", "신발", "가방", "시계", "컵", "숟가락", "젓가락",
	"칫솔", "휴지", "거울", "열쇠", "자물쇠", "책", "연필", "지우개", "가위", "종이비행기",
	// vehicles, places, nature
	"자동차", "비행기", "자전거", "배", "기차", "버스", "집", "학교", "병원", "놀이터",
	"나무", "꽃", "해바라기", "선인장", "구름", "해", "달", "별", "눈사람", "무지개",
	// body, actions, jobs
	"눈", "코", "입", "귀", "손", "발", "의사", "경찰", "소방관", "요리사",
	"축구공", "야구방망이", "농구공", "수영", "낚시", "마이크", "침대", "텔레비전", "컴퓨터", "스마트폰",
}

// PickWord selects a random secret word. An empty candidate list falls
// back to the built-in list so the result is always a non-empty word.
func PickWord(words []string) string {
	if len(words) == 0 {
		words = DefaultWords
	}
	return words[rand.IntN(len(words))]
}
