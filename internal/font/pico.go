package font

// picoBitmaps and picoGlyphs make up a 3x5 font in Adafruit GFX layout. The baseline sits 5
// rows below the top of a line and descenders use one more row. Backtick and tilde are
// placeholders.

var picoBitmaps = []byte{
	0xe8, 0xb4, 0x57, 0xd5, 0xf5, 0x00, 0x79, 0x3c, 0xa5, 0x4a, 0x55, 0x56,
	0xc0, 0x6a, 0x40, 0x95, 0x80, 0xaa, 0x80, 0x5d, 0x00, 0x60, 0xe0, 0x80,
	0x25, 0x48, 0xf6, 0xde, 0x59, 0x2e, 0xc5, 0x4e, 0xc5, 0x1c, 0xb7, 0x92,
	0xf3, 0x1c, 0x73, 0xde, 0xe5, 0x24, 0xf7, 0xde, 0xf7, 0x9c, 0xa0, 0x46,
	0x2a, 0x22, 0xe3, 0x80, 0x88, 0xa8, 0xc5, 0x04, 0x69, 0xb8, 0x70, 0x57,
	0xda, 0xd7, 0x5c, 0x72, 0x46, 0xd6, 0xdc, 0xf3, 0x4e, 0xf3, 0x48, 0x72,
	0xd6, 0xb7, 0xda, 0xe9, 0x2e, 0x24, 0xd4, 0xb7, 0x5a, 0x92, 0x4e, 0x8e,
	0xeb, 0x18, 0x80, 0x9d, 0xb9, 0x90, 0x56, 0xd4, 0xd7, 0x48, 0x56, 0xd6,
	0xd7, 0x5a, 0x71, 0x1c, 0xe9, 0x24, 0xb6, 0xde, 0xb6, 0xd4, 0x8c, 0x6b,
	0xb8, 0x80, 0xb5, 0x5a, 0xb5, 0x24, 0xe5, 0x4e, 0xea, 0xc0, 0x91, 0x12,
	0xd5, 0xc0, 0x54, 0xe0, 0x76, 0xb0, 0x9a, 0xdc, 0x72, 0x30, 0x2e, 0xd6,
	0x5e, 0x30, 0x73, 0x48, 0x75, 0x9c, 0x9a, 0xda, 0xb8, 0x45, 0x60, 0x97,
	0x5a, 0xf8, 0xd5, 0x6b, 0x50, 0xd6, 0xd0, 0x56, 0xa0, 0xd6, 0xe8, 0x76,
	0xb2, 0xba, 0x40, 0x78, 0xe0, 0x5d, 0x22, 0xb6, 0xb0, 0xb6, 0xa0, 0x8c,
	0x6a, 0xa0, 0xa9, 0x50, 0xb5, 0x9c, 0xe6, 0x70, 0x6a, 0x26, 0xf8, 0xc8,
	0xac,
}

var picoGlyphs = []GlyphEntry{
	{0, 0, 0, 2, 0, 0},    // 0x20 ' '
	{0, 1, 5, 2, 0, -5},   // 0x21 '!'
	{1, 3, 2, 4, 0, -5},   // 0x22 '"'
	{2, 5, 5, 6, 0, -5},   // 0x23 '#'
	{6, 3, 5, 4, 0, -5},   // 0x24 '$'
	{8, 3, 5, 4, 0, -5},   // 0x25 '%'
	{10, 3, 5, 4, 0, -5},  // 0x26 '&'
	{12, 1, 2, 2, 0, -5},  // 0x27 "'"
	{13, 2, 5, 3, 0, -5},  // 0x28 '('
	{15, 2, 5, 3, 0, -5},  // 0x29 ')'
	{17, 3, 3, 4, 0, -4},  // 0x2a '*'
	{19, 3, 3, 4, 0, -4},  // 0x2b '+'
	{21, 2, 2, 3, 0, 0},   // 0x2c ','
	{22, 3, 1, 4, 0, -3},  // 0x2d '-'
	{23, 1, 1, 2, 0, -1},  // 0x2e '.'
	{24, 3, 5, 4, 0, -5},  // 0x2f '/'
	{26, 3, 5, 4, 0, -5},  // 0x30 '0'
	{28, 3, 5, 4, 0, -5},  // 0x31 '1'
	{30, 3, 5, 4, 0, -5},  // 0x32 '2'
	{32, 3, 5, 4, 0, -5},  // 0x33 '3'
	{34, 3, 5, 4, 0, -5},  // 0x34 '4'
	{36, 3, 5, 4, 0, -5},  // 0x35 '5'
	{38, 3, 5, 4, 0, -5},  // 0x36 '6'
	{40, 3, 5, 4, 0, -5},  // 0x37 '7'
	{42, 3, 5, 4, 0, -5},  // 0x38 '8'
	{44, 3, 5, 4, 0, -5},  // 0x39 '9'
	{46, 1, 3, 2, 0, -4},  // 0x3a ':'
	{47, 2, 4, 3, 0, -4},  // 0x3b ';'
	{48, 3, 5, 4, 0, -5},  // 0x3c '<'
	{50, 3, 3, 4, 0, -4},  // 0x3d '='
	{52, 3, 5, 4, 0, -5},  // 0x3e '>'
	{54, 3, 5, 4, 0, -5},  // 0x3f '?'
	{56, 4, 5, 5, 0, -5},  // 0x40 '@'
	{59, 3, 5, 4, 0, -5},  // 0x41 'A'
	{61, 3, 5, 4, 0, -5},  // 0x42 'B'
	{63, 3, 5, 4, 0, -5},  // 0x43 'C'
	{65, 3, 5, 4, 0, -5},  // 0x44 'D'
	{67, 3, 5, 4, 0, -5},  // 0x45 'E'
	{69, 3, 5, 4, 0, -5},  // 0x46 'F'
	{71, 3, 5, 4, 0, -5},  // 0x47 'G'
	{73, 3, 5, 4, 0, -5},  // 0x48 'H'
	{75, 3, 5, 4, 0, -5},  // 0x49 'I'
	{77, 3, 5, 4, 0, -5},  // 0x4a 'J'
	{79, 3, 5, 4, 0, -5},  // 0x4b 'K'
	{81, 3, 5, 4, 0, -5},  // 0x4c 'L'
	{83, 5, 5, 6, 0, -5},  // 0x4d 'M'
	{87, 4, 5, 5, 0, -5},  // 0x4e 'N'
	{90, 3, 5, 4, 0, -5},  // 0x4f 'O'
	{92, 3, 5, 4, 0, -5},  // 0x50 'P'
	{94, 3, 5, 4, 0, -5},  // 0x51 'Q'
	{96, 3, 5, 4, 0, -5},  // 0x52 'R'
	{98, 3, 5, 4, 0, -5},  // 0x53 'S'
	{100, 3, 5, 4, 0, -5}, // 0x54 'T'
	{102, 3, 5, 4, 0, -5}, // 0x55 'U'
	{104, 3, 5, 4, 0, -5}, // 0x56 'V'
	{106, 5, 5, 6, 0, -5}, // 0x57 'W'
	{110, 3, 5, 4, 0, -5}, // 0x58 'X'
	{112, 3, 5, 4, 0, -5}, // 0x59 'Y'
	{114, 3, 5, 4, 0, -5}, // 0x5a 'Z'
	{116, 2, 5, 3, 0, -5}, // 0x5b '['
	{118, 3, 5, 4, 0, -5}, // 0x5c '\\'
	{120, 2, 5, 3, 0, -5}, // 0x5d ']'
	{122, 3, 2, 4, 0, -5}, // 0x5e '^'
	{123, 3, 1, 4, 0, 0},  // 0x5f '_'
	{0, 0, 0, 0, 0, 0},    // 0x60 '`'
	{124, 3, 4, 4, 0, -4}, // 0x61 'a'
	{126, 3, 5, 4, 0, -5}, // 0x62 'b'
	{128, 3, 4, 4, 0, -4}, // 0x63 'c'
	{130, 3, 5, 4, 0, -5}, // 0x64 'd'
	{132, 3, 4, 4, 0, -4}, // 0x65 'e'
	{134, 3, 5, 4, 0, -5}, // 0x66 'f'
	{136, 3, 5, 4, 0, -4}, // 0x67 'g'
	{138, 3, 5, 4, 0, -5}, // 0x68 'h'
	{140, 1, 5, 2, 0, -5}, // 0x69 'i'
	{141, 2, 6, 3, 0, -5}, // 0x6a 'j'
	{143, 3, 5, 4, 0, -5}, // 0x6b 'k'
	{145, 1, 5, 2, 0, -5}, // 0x6c 'l'
	{146, 5, 4, 6, 0, -4}, // 0x6d 'm'
	{149, 3, 4, 4, 0, -4}, // 0x6e 'n'
	{151, 3, 4, 4, 0, -4}, // 0x6f 'o'
	{153, 3, 5, 4, 0, -4}, // 0x70 'p'
	{155, 3, 5, 4, 0, -4}, // 0x71 'q'
	{157, 3, 4, 4, 0, -4}, // 0x72 'r'
	{159, 3, 4, 4, 0, -4}, // 0x73 's'
	{161, 3, 5, 4, 0, -5}, // 0x74 't'
	{163, 3, 4, 4, 0, -4}, // 0x75 'u'
	{165, 3, 4, 4, 0, -4}, // 0x76 'v'
	{167, 5, 4, 6, 0, -4}, // 0x77 'w'
	{170, 3, 4, 4, 0, -4}, // 0x78 'x'
	{172, 3, 5, 4, 0, -4}, // 0x79 'y'
	{174, 3, 4, 4, 0, -4}, // 0x7a 'z'
	{176, 3, 5, 4, 0, -5}, // 0x7b '{'
	{178, 1, 5, 2, 0, -5}, // 0x7c '|'
	{179, 3, 5, 4, 0, -5}, // 0x7d '}'
	{0, 0, 0, 0, 0, 0},    // 0x7e '~'
}
