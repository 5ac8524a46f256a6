package region

// domesticCities are Korean cities, provinces and districts, in Hangul and
// romanized.
var domesticCities = []string{
	"서울", "부산", "대구", "인천", "광주", "대전", "울산", "세종",
	"수원", "성남", "고양", "용인", "창원", "청주", "전주", "천안",
	"포항", "김해", "제주", "서귀포", "강릉", "춘천", "경주", "여수",
	"경기", "강원", "충북", "충남", "전북", "전남", "경북", "경남",
	"강남", "홍대", "성수", "잠실", "명동", "이태원", "해운대", "서면",
	"seoul", "busan", "daegu", "incheon", "gwangju", "daejeon", "ulsan",
	"sejong", "suwon", "jeju", "gangnam", "hongdae", "itaewon", "haeundae",
	"gyeongju", "jeonju", "gangneung",
}

// foreignCities are cities abroad, in English and in Hangul transcription.
var foreignCities = []string{
	"도쿄", "오사카", "교토", "후쿠오카", "삿포로", "오키나와", "나고야",
	"방콕", "치앙마이", "푸켓", "다낭", "하노이", "호치민", "나트랑",
	"싱가포르", "홍콩", "마카오", "타이베이", "상하이", "베이징",
	"세부", "보라카이", "발리", "괌", "사이판",
	"뉴욕", "로스앤젤레스", "샌프란시스코", "하와이", "밴쿠버", "토론토",
	"파리", "런던", "로마", "바르셀로나", "프라하", "시드니", "멜버른",
	"tokyo", "osaka", "kyoto", "fukuoka", "sapporo", "okinawa", "nagoya",
	"bangkok", "chiang mai", "phuket", "da nang", "danang", "hanoi",
	"ho chi minh", "saigon", "nha trang", "singapore", "hong kong",
	"macau", "taipei", "shanghai", "beijing", "cebu", "boracay", "bali",
	"guam", "saipan", "new york", "los angeles", "san francisco", "hawaii",
	"vancouver", "toronto", "paris", "london", "rome", "barcelona",
	"prague", "sydney", "melbourne",
}
